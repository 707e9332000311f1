package apperr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertKind asserts that err carries kind and, when message is not empty,
// the given client-facing message.
func AssertKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected kind for %v", err)
	if message != "" {
		assert.Equal(t, message, Message(err))
	}
}
