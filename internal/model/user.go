package model

import (
	"time"
)

type User struct {
	ID                        string     `db:"id"`
	Username                  string     `db:"username"`
	Email                     string     `db:"email"`
	PasswordHash              string     `db:"password_hash"`
	IsActive                  bool       `db:"is_active"`
	EmailVerifiedAt           *time.Time `db:"email_verified_at"`
	VerificationCodeHash      *string    `db:"verification_code_hash"`
	VerificationCodeExpiresAt *time.Time `db:"verification_code_expires_at"`
	CreatedAt                 time.Time  `db:"created_at"`
	UpdatedAt                 time.Time  `db:"updated_at"`
}

// IsPending reports whether the account still waits for email verification.
func (u *User) IsPending() bool {
	return !u.IsActive
}

// VerificationExpired reports whether the outstanding verification code is past
// its expiry. A missing expiry counts as expired.
func (u *User) VerificationExpired(now time.Time) bool {
	if u.VerificationCodeExpiresAt == nil {
		return true
	}
	return now.After(*u.VerificationCodeExpiresAt)
}

// SetVerificationCode stores a fresh code hash, invalidating any earlier code.
func (u *User) SetVerificationCode(hash string, expiresAt time.Time) {
	u.VerificationCodeHash = &hash
	u.VerificationCodeExpiresAt = &expiresAt
}

// Activate moves a pending account to active and clears the verification code.
func (u *User) Activate(now time.Time) {
	u.IsActive = true
	u.EmailVerifiedAt = &now
	u.VerificationCodeHash = nil
	u.VerificationCodeExpiresAt = nil
	u.UpdatedAt = now
}

// PublicUser is the projection returned to clients. It never carries the
// password hash or verification code.
type PublicUser struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	IsActive        bool       `json:"is_active"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		IsActive:        u.IsActive,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
