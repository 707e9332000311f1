package validation

import "errors"

// ValidateCode accepts exactly six ASCII digits.
func ValidateCode(code string) error {
	if len(code) != 6 {
		return errors.New("code must be 6 digits")
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return errors.New("code must be 6 digits")
		}
	}
	return nil
}
