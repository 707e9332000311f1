package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"alice@x.com", "bob.smith+tag@example.co.uk"}
	invalid := []string{"", "no-at-sign", "Alice <alice@x.com>", "a@", strings.Repeat("a", 250) + "@x.com"}

	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.com "))
	// Fullwidth characters fold to ASCII under NFKC
	assert.Equal(t, "alice@x.com", NormalizeEmail("ａｌｉｃｅ@x.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Password1!"))
	assert.NoError(t, ValidatePassword(strings.Repeat("a", 72)))
	// 72 characters but far more than 72 bytes
	assert.NoError(t, ValidatePassword(strings.Repeat("日", 72)))

	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("a", 73)))
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "alice", false},
		{"with separators", "alice_b.c-d", false},
		{"unicode letters", "zoë", false},
		{"empty", "", true},
		{"too short", "al", true},
		{"too long", strings.Repeat("a", 51), true},
		{"space", "alice b", true},
		{"symbol", "alice!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  alice\t"))
	assert.Equal(t, "Alice", NormalizeUsername("Ａｌｉｃｅ"))
}

func TestValidateCode(t *testing.T) {
	assert.NoError(t, ValidateCode("123456"))
	assert.Error(t, ValidateCode("12345"))
	assert.Error(t, ValidateCode("1234567"))
	assert.Error(t, ValidateCode("12a456"))
	assert.Error(t, ValidateCode(""))
}
