package apperr_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/apiplate/internal/apperr"
)

func TestKindStatus(t *testing.T) {
	tests := map[apperr.Kind]int{
		apperr.KindConflict:        http.StatusConflict,
		apperr.KindInvalidRequest:  http.StatusBadRequest,
		apperr.KindUnauthorized:    http.StatusUnauthorized,
		apperr.KindNotFound:        http.StatusNotFound,
		apperr.KindAlreadyVerified: http.StatusBadRequest,
		apperr.KindValidation:      http.StatusUnprocessableEntity,
		apperr.KindRateLimited:     http.StatusTooManyRequests,
		apperr.KindInternal:        http.StatusInternalServerError,
		apperr.Kind("SOMETHING"):   http.StatusInternalServerError,
	}

	for kind, want := range tests {
		assert.Equal(t, want, kind.Status(), kind)
	}
}

func TestNewCarriesKindAndMessage(t *testing.T) {
	err := apperr.New(apperr.KindConflict, "Email already registered")

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
	assert.Equal(t, "Email already registered", apperr.Message(err))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	wrapped := fmt.Errorf("register: %w", err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(wrapped))
	assert.Equal(t, "Email already registered", apperr.Message(wrapped))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused to 10.0.0.5")
	err := apperr.Internal(cause, "create user", "email", "alice@example.com")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, apperr.InternalMessage, apperr.Message(err))
	assert.NotContains(t, apperr.Message(err), "10.0.0.5")
}

func TestInternalKeepsClassifiedErrors(t *testing.T) {
	classified := apperr.New(apperr.KindNotFound, "Invalid email address")

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.Internal(classified, "forgot password")))
	assert.Nil(t, apperr.Internal(nil, "noop"))
}

func TestPlainErrorsAreInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, apperr.InternalMessage, apperr.Message(err))
	assert.Equal(t, apperr.Kind(""), apperr.KindOf(nil))
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := apperr.Internal(errors.New("disk full"), "reset password", "user_id", "u1")
	apperr.LogError(logger, "operation failed", err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "INTERNAL", entry["code"])
	assert.Contains(t, entry["error"], "disk full")

	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", ctx["user_id"])
	assert.Equal(t, "reset password", ctx["operation"])
}
