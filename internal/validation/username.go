package validation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
)

// NormalizeUsername trims and NFKC-normalizes a username so visually identical
// spellings collide on the unique index.
func NormalizeUsername(username string) string {
	return norm.NFKC.String(strings.TrimSpace(username))
}

// ValidateUsername expects a normalized username.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}

	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength {
		return errors.New("username must be at least 3 characters")
	}
	if n > UsernameMaxLength {
		return errors.New("username is too long (max 50 characters)")
	}

	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' {
			continue
		}
		return errors.New("username may only contain letters, digits, '_', '.' and '-'")
	}

	return nil
}
