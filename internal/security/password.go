package security

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxInput is the number of input bytes bcrypt actually uses.
const bcryptMaxInput = 72

// PasswordHasher hashes secrets with bcrypt. Inputs longer than bcrypt's limit
// are condensed to a hex SHA-256 digest first, so long passphrases keep all
// of their entropy instead of being truncated.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. Malformed or empty hashes
// never match.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

func prehash(password string) []byte {
	b := []byte(password)
	if len(b) <= bcryptMaxInput {
		return b
	}
	sum := sha256.Sum256(b)
	return []byte(hex.EncodeToString(sum[:]))
}
