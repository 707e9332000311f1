package security

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// CodeIssuer generates six digit one-time codes and stores them hashed.
type CodeIssuer struct {
	hasher *PasswordHasher
}

func NewCodeIssuer(hasher *PasswordHasher) *CodeIssuer {
	return &CodeIssuer{hasher: hasher}
}

// Generate returns a code drawn uniformly from [100000, 999999].
func (c *CodeIssuer) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

func (c *CodeIssuer) Hash(code string) (string, error) {
	return c.hasher.Hash(code)
}

// Verify reports whether candidate matches the stored hash. Empty input on
// either side is a mismatch.
func (c *CodeIssuer) Verify(hash, candidate string) bool {
	if hash == "" || candidate == "" {
		return false
	}
	return c.hasher.Verify(candidate, hash)
}
