package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{"short", "Password1!"},
		{"exactly limit", strings.Repeat("a", bcryptMaxInput)},
		{"over limit", strings.Repeat("b", bcryptMaxInput+1)},
		{"very long", strings.Repeat("correct horse battery staple ", 40)},
		{"multibyte", "pässwörd-ß-日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, h.Verify(tt.password, hash))

			mutated := tt.password[:len(tt.password)-1] + "X"
			assert.False(t, h.Verify(mutated, hash))
		})
	}
}

func TestPasswordHasher_LongInputsDoNotTruncate(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	prefix := strings.Repeat("p", 80)

	hash, err := h.Hash(prefix + "1")
	require.NoError(t, err)

	assert.False(t, h.Verify(prefix+"2", hash), "bytes past 72 must still matter")
}

func TestPasswordHasher_SaltedAndSelfDescribing(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	cost, err := bcrypt.Cost([]byte(a))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, h.Verify("password", ""))
	assert.False(t, h.Verify("password", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("", "$2a$04$short"))
}

func TestNewPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}
