// Package apperr defines the error kinds returned by services and how they
// map onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
)

type Kind string

const (
	KindConflict        Kind = "CONFLICT"
	KindInvalidRequest  Kind = "INVALID_REQUEST"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindNotFound        Kind = "NOT_FOUND"
	KindAlreadyVerified Kind = "ALREADY_VERIFIED"
	KindValidation      Kind = "VALIDATION"
	KindRateLimited     Kind = "RATE_LIMITED"
	KindInternal        Kind = "INTERNAL"
)

// InternalMessage is the only text a caller ever sees for an internal failure.
const InternalMessage = "Internal server error"

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindConflict:
		return http.StatusConflict
	case KindInvalidRequest, KindAlreadyVerified:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New returns a caller-facing error. message is shown to the client as is.
func New(kind Kind, message string) error {
	return oops.Code(string(kind)).Public(message).New(message)
}

// Internal wraps an unexpected failure. The cause is kept for logging and
// hidden from the client.
func Internal(err error, operation string, kv ...any) error {
	if err == nil {
		return nil
	}
	if _, ok := oops.AsOops(err); ok {
		// Already classified further down
		return err
	}
	return oops.
		Code(string(KindInternal)).
		With("operation", operation).
		With(kv...).
		Public(InternalMessage).
		Wrapf(err, "%s", operation)
}

// KindOf returns the kind carried by err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok || oopsErr.Code() == nil {
		return KindInternal
	}
	return Kind(fmt.Sprint(oopsErr.Code()))
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	return KindOf(err).Status()
}

// Message returns the client-safe message for err.
func Message(err error) string {
	if KindOf(err) == KindInternal {
		return InternalMessage
	}
	return oops.GetPublic(err, InternalMessage)
}

// LogError logs err with its code and context when it is an oops error.
func LogError(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var oopsErr oops.OopsError
	if errors.As(err, &oopsErr) {
		attrs := []any{"error", oopsErr.Error()}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
		return
	}

	logger.Error(msg, "error", err)
}
