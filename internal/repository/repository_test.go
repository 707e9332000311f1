package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/apiplate/internal/db/dbtest"
	"github.com/templui/apiplate/internal/model"
	"github.com/templui/apiplate/internal/repository"
)

func newUser(username string) *model.User {
	return &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := repository.NewStore(dbtest.New(t)).Users()

	u := newUser("alice")
	u.SetVerificationCode("code-hash", time.Now().UTC().Add(15*time.Minute))
	require.NoError(t, users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	byEmail, err := users.ByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.False(t, byEmail.IsActive)
	require.NotNil(t, byEmail.VerificationCodeHash)
	assert.Equal(t, "code-hash", *byEmail.VerificationCodeHash)
	require.NotNil(t, byEmail.VerificationCodeExpiresAt)
	assert.WithinDuration(t, *u.VerificationCodeExpiresAt, *byEmail.VerificationCodeExpiresAt, time.Millisecond)

	byName, err := users.ByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = users.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_DuplicateDetection(t *testing.T) {
	ctx := context.Background()
	users := repository.NewStore(dbtest.New(t)).Users()

	require.NoError(t, users.Create(ctx, newUser("alice")))

	sameName := newUser("alice")
	sameName.Email = "other@example.com"
	assert.ErrorIs(t, users.Create(ctx, sameName), repository.ErrDuplicateUsername)

	sameEmail := newUser("bob")
	sameEmail.Email = "alice@example.com"
	assert.ErrorIs(t, users.Create(ctx, sameEmail), repository.ErrDuplicateEmail)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	users := repository.NewStore(dbtest.New(t)).Users()

	u := newUser("alice")
	u.SetVerificationCode("code-hash", time.Now().UTC().Add(time.Minute))
	require.NoError(t, users.Create(ctx, u))

	u.Activate(time.Now().UTC())
	require.NoError(t, users.Update(ctx, u))

	got, err := users.ByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.NotNil(t, got.EmailVerifiedAt)
	assert.Nil(t, got.VerificationCodeHash)
	assert.Nil(t, got.VerificationCodeExpiresAt)

	require.NoError(t, users.Delete(ctx, u.ID))
	assert.ErrorIs(t, users.Delete(ctx, u.ID), repository.ErrUserNotFound)
	assert.ErrorIs(t, users.Update(ctx, u), repository.ErrUserNotFound)
}

func TestResetTokenRepository(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))

	u := newUser("alice")
	require.NoError(t, store.Users().Create(ctx, u))

	tokens := store.ResetTokens()
	_, err := tokens.LatestByUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	now := time.Now().UTC()
	first := &model.PasswordResetToken{UserID: u.ID, CodeHash: "first", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now}
	second := &model.PasswordResetToken{UserID: u.ID, CodeHash: "second", ExpiresAt: now.Add(15 * time.Minute), CreatedAt: now.Add(time.Second)}
	require.NoError(t, tokens.Create(ctx, first))
	require.NoError(t, tokens.Create(ctx, second))

	latest, err := tokens.LatestByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", latest.CodeHash)
	assert.False(t, latest.IsUsed())

	require.NoError(t, tokens.MarkUsed(ctx, latest.ID, now))
	assert.ErrorIs(t, tokens.MarkUsed(ctx, latest.ID, now), repository.ErrTokenUsed)

	latest, err = tokens.LatestByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, latest.IsUsed())

	require.NoError(t, tokens.DeleteByUser(ctx, u.ID))
	_, err = tokens.LatestByUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestResetTokenRepository_CleanupExpired(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))

	u := newUser("alice")
	require.NoError(t, store.Users().Create(ctx, u))

	now := time.Now().UTC()
	tokens := store.ResetTokens()
	require.NoError(t, tokens.Create(ctx, &model.PasswordResetToken{UserID: u.ID, CodeHash: "old", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, tokens.Create(ctx, &model.PasswordResetToken{UserID: u.ID, CodeHash: "fresh", ExpiresAt: now.Add(time.Hour)}))

	removed, err := tokens.CleanupExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	latest, err := tokens.LatestByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", latest.CodeHash)
}

func TestResetTokensCascadeWithUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))

	u := newUser("alice")
	require.NoError(t, store.Users().Create(ctx, u))
	require.NoError(t, store.ResetTokens().Create(ctx, &model.PasswordResetToken{UserID: u.ID, CodeHash: "c", ExpiresAt: time.Now().UTC().Add(time.Hour)}))

	require.NoError(t, store.Users().Delete(ctx, u.ID))

	_, err := store.ResetTokens().LatestByUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestStoreWithTx(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.New(t))
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		u := newUser("alice")
		require.NoError(t, tx.Users().Create(ctx, u))
		require.NoError(t, tx.ResetTokens().Create(ctx, &model.PasswordResetToken{UserID: u.ID, CodeHash: "c", ExpiresAt: time.Now().UTC().Add(time.Hour)}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Users().ByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound, "rolled back insert must not be visible")

	err = store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.WithTx(ctx, func(ctx context.Context, inner repository.Store) error {
			return inner.Users().Create(ctx, newUser("bob"))
		})
	})
	require.NoError(t, err)

	_, err = store.Users().ByUsername(ctx, "bob")
	assert.NoError(t, err)
}
