package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/apiplate/internal/db"
)

// Store groups the repositories so a service can run several of them in one
// transaction.
type Store interface {
	Users() UserRepository
	ResetTokens() ResetTokenRepository
	// WithTx runs fn against a transaction-bound Store. Nested calls reuse the
	// outer transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type sqlStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

func NewStore(database *sqlx.DB) Store {
	return &sqlStore{db: database, ext: database}
}

func (s *sqlStore) Users() UserRepository {
	return NewUserRepository(s.ext)
}

func (s *sqlStore) ResetTokens() ResetTokenRepository {
	return NewResetTokenRepository(s.ext)
}

func (s *sqlStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.db == nil {
		return fn(ctx, s)
	}

	return db.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, &sqlStore{ext: tx})
	})
}
