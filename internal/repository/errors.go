package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenUsed         = errors.New("token has already been used")
)

// uniqueViolation reports whether err is a unique constraint failure and
// returns the constraint detail (Postgres constraint name or SQLite message).
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgerrcode.UniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return msg, true
	}
	return "", false
}
