package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/apiplate/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query := `
		INSERT INTO users (
			id, username, email, password_hash, is_active, email_verified_at,
			verification_code_hash, verification_code_expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.EmailVerifiedAt,
		user.VerificationCodeHash,
		user.VerificationCodeExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// Unique constraint violation (works for both SQLite and PostgreSQL)
		if detail, ok := uniqueViolation(err); ok {
			if strings.Contains(detail, "username") {
				return ErrDuplicateUsername
			}
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) ByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

func (r *userRepository) getBy(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}

	err := sqlx.GetContext(ctx, r.db, user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users SET
			username = $1,
			email = $2,
			password_hash = $3,
			is_active = $4,
			email_verified_at = $5,
			verification_code_hash = $6,
			verification_code_expires_at = $7,
			updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.EmailVerifiedAt,
		user.VerificationCodeHash,
		user.VerificationCodeExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if detail, ok := uniqueViolation(err); ok {
			if strings.Contains(detail, "username") {
				return ErrDuplicateUsername
			}
			return ErrDuplicateEmail
		}
		return err
	}

	return requireAffected(result, ErrUserNotFound)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireAffected(result, ErrUserNotFound)
}

func requireAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
