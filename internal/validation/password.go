package validation

import (
	"errors"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 72
)

// ValidatePassword checks password length in characters. Multibyte passwords
// may exceed bcrypt's 72 byte window; the hasher condenses those.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)

	if n < PasswordMinLength {
		return errors.New("password must be at least 8 characters")
	}

	if n > PasswordMaxLength {
		return errors.New("password must not exceed 72 characters")
	}

	return nil
}
