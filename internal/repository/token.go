package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/apiplate/internal/model"
)

type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	LatestByUser(ctx context.Context, userID string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context, before time.Time) (int64, error)
}

type resetTokenRepository struct {
	db sqlx.ExtContext
}

func NewResetTokenRepository(db sqlx.ExtContext) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO password_reset_tokens (id, user_id, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.CodeHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// LatestByUser returns the most recently created token for the user.
func (r *resetTokenRepository) LatestByUser(ctx context.Context, userID string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	query := `
		SELECT * FROM password_reset_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := sqlx.GetContext(ctx, r.db, &t, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// MarkUsed stamps used_at only if the token is still unused, so two
// concurrent resets cannot both consume it.
func (r *resetTokenRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	query := `UPDATE password_reset_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return err
	}

	return requireAffected(result, ErrTokenUsed)
}

func (r *resetTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	return err
}

// CleanupExpired removes tokens that expired or were consumed before the cutoff.
func (r *resetTokenRepository) CleanupExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < $1 OR used_at < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
