// Package response writes the JSON envelope every API endpoint returns.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/templui/apiplate/internal/apperr"
)

type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Warning    string `json:"warning,omitempty"`
	StatusCode int    `json:"status_code"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// Success writes a successful envelope.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		StatusCode: status,
	})
}

// SuccessWithWarning is Success plus a delivery warning. An empty warning
// is omitted.
func SuccessWithWarning(w http.ResponseWriter, status int, message string, data any, warning string) {
	JSON(w, status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Warning:    warning,
		StatusCode: status,
	})
}

// Fail writes a failed envelope with an explicit status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{
		Success:    false,
		Message:    message,
		StatusCode: status,
	})
}

// Error maps err to its status and client message. Internal errors are
// logged with their cause and reported generically.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger := slog.Default().With(
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		apperr.LogError(logger, "request failed", err)
	}

	Fail(w, status, apperr.Message(err))
}

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

// Decode reads a JSON request body of at most MaxBodyBytes into dst. Any
// decoding failure is an INVALID_REQUEST error.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(apperr.KindInvalidRequest, "Request body too large")
		}
		return apperr.New(apperr.KindInvalidRequest, "Invalid request body")
	}
	return nil
}
