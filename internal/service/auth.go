package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/templui/apiplate/internal/apperr"
	"github.com/templui/apiplate/internal/metrics"
	"github.com/templui/apiplate/internal/model"
	"github.com/templui/apiplate/internal/repository"
	"github.com/templui/apiplate/internal/security"
	"github.com/templui/apiplate/internal/validation"
)

// Messages returned to clients.
const (
	MsgUsernameTaken     = "Username already taken"
	MsgEmailRegistered   = "Email already registered"
	MsgVerifyNoPending   = "Invalid email or already verified"
	MsgVerifyExpired     = "Verification code expired, kindly request a fresh verification code"
	MsgVerifyInvalidCode = "Invalid verification code"
	MsgAlreadyVerified   = "Account has been previously verified"
	MsgInvalidEmail      = "Invalid email address"
	MsgBadCredentials    = "Incorrect email or password"
	MsgNotVerified       = "Account is yet to be verified, kindly verify your account"
	MsgResetNoToken      = "No reset code found for this user."
	MsgResetInvalidCode  = "Invalid verification code."
	MsgResetExpired      = "Reset code has expired."
	MsgResetUsed         = "This reset code has already been used."
	MsgInvalidSession    = "Could not validate credentials"
)

// Delivery warnings attached to a successful operation whose email failed.
const (
	WarnVerifyEmail  = "Verification email could not be sent. Request a new code to try again."
	WarnResetEmail   = "Password reset email could not be sent. Request a new code to try again."
	WarnWelcomeEmail = "Welcome email could not be sent."
)

// TokenTypeBearer is the token_type reported with every session token.
const TokenTypeBearer = "bearer"

// AuthConfig holds the lifecycle TTLs.
type AuthConfig struct {
	TokenTTL            time.Duration
	VerificationCodeTTL time.Duration
	ResetCodeTTL        time.Duration
}

// Delivery reports the outcome of the notification that follows a committed
// state change. A failed send never undoes the change.
type Delivery struct {
	Sent    bool
	Warning string
}

type RegisterResult struct {
	User     model.PublicUser
	Delivery Delivery
}

type VerifyResult struct {
	User     model.PublicUser
	Delivery Delivery
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	User        model.PublicUser
}

type AuthService struct {
	store    repository.Store
	hasher   *security.PasswordHasher
	codes    *security.CodeIssuer
	tokens   *security.TokenIssuer
	notifier Notifier
	metrics  *metrics.Metrics
	cfg      AuthConfig
	now      func() time.Time
	// generate yields plaintext codes; codes.Generate outside tests.
	generate func() (string, error)

	// dummyHash is compared against on unknown emails so Login takes the
	// same time whether or not the account exists.
	dummyHash func() string
}

func NewAuthService(
	store repository.Store,
	hasher *security.PasswordHasher,
	codes *security.CodeIssuer,
	tokens *security.TokenIssuer,
	notifier Notifier,
	m *metrics.Metrics,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		codes:    codes,
		tokens:   tokens,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
		generate: codes.Generate,
		dummyHash: sync.OnceValue(func() string {
			hash, _ := hasher.Hash("dummy-password-for-timing")
			return hash
		}),
	}
}

// Register creates a pending account and emails its verification code.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (_ *RegisterResult, err error) {
	defer s.observe("register", &err)

	username = validation.NormalizeUsername(username)
	email = validation.NormalizeEmail(email)
	err = firstInvalid(
		validation.ValidateUsername(username),
		validation.ValidateEmail(email),
		validation.ValidatePassword(password),
	)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}
	code, codeHash, err := s.newCode()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.SetVerificationCode(codeHash, now.Add(s.cfg.VerificationCodeTTL))

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		_, err := tx.Users().ByUsername(ctx, username)
		if err == nil {
			return apperr.New(apperr.KindConflict, MsgUsernameTaken)
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return apperr.Internal(err, "lookup username")
		}

		_, err = tx.Users().ByEmail(ctx, email)
		if err == nil {
			return apperr.New(apperr.KindConflict, MsgEmailRegistered)
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return apperr.Internal(err, "lookup email")
		}

		// A concurrent registration can still win the race; the unique
		// constraints decide.
		err = tx.Users().Create(ctx, user)
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return apperr.New(apperr.KindConflict, MsgUsernameTaken)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return apperr.New(apperr.KindConflict, MsgEmailRegistered)
		case err != nil:
			return apperr.Internal(err, "create user")
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err, "register")
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)

	delivery := s.notify(ctx, user, TemplateVerify, WarnVerifyEmail, map[string]any{
		"code":           code,
		"expiry_minutes": minutes(s.cfg.VerificationCodeTTL),
	})

	return &RegisterResult{User: user.Public(), Delivery: delivery}, nil
}

// Verify activates a pending account when code matches its unexpired
// verification code.
func (s *AuthService) Verify(ctx context.Context, email, code string) (_ *VerifyResult, err error) {
	defer s.observe("verify", &err)

	email = validation.NormalizeEmail(email)
	err = firstInvalid(validation.ValidateEmail(email), validation.ValidateCode(code))
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().ByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.New(apperr.KindInvalidRequest, MsgVerifyNoPending)
		}
		if err != nil {
			return apperr.Internal(err, "lookup user")
		}
		if !user.IsPending() {
			return apperr.New(apperr.KindInvalidRequest, MsgVerifyNoPending)
		}

		now := s.now().UTC()
		if user.VerificationExpired(now) {
			return apperr.New(apperr.KindInvalidRequest, MsgVerifyExpired)
		}
		if user.VerificationCodeHash == nil || !s.codes.Verify(*user.VerificationCodeHash, code) {
			return apperr.New(apperr.KindInvalidRequest, MsgVerifyInvalidCode)
		}

		user.Activate(now)
		err = tx.Users().Update(ctx, user)
		if err != nil {
			return apperr.Internal(err, "activate user")
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err, "verify")
	}

	slog.InfoContext(ctx, "user verified", "user_id", user.ID)

	delivery := s.notify(ctx, user, TemplateWelcome, WarnWelcomeEmail, nil)

	return &VerifyResult{User: user.Public(), Delivery: delivery}, nil
}

// ResendVerificationCode replaces the code of a pending account and emails
// the new one. The previous code stops working immediately.
func (s *AuthService) ResendVerificationCode(ctx context.Context, email string) (_ Delivery, err error) {
	defer s.observe("resend_code", &err)

	email = validation.NormalizeEmail(email)
	err = firstInvalid(validation.ValidateEmail(email))
	if err != nil {
		return Delivery{}, err
	}

	code, codeHash, err := s.newCode()
	if err != nil {
		return Delivery{}, err
	}

	var user *model.User
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().ByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.New(apperr.KindInvalidRequest, MsgInvalidEmail)
		}
		if err != nil {
			return apperr.Internal(err, "lookup user")
		}
		if !user.IsPending() {
			return apperr.New(apperr.KindAlreadyVerified, MsgAlreadyVerified)
		}

		now := s.now().UTC()
		user.SetVerificationCode(codeHash, now.Add(s.cfg.VerificationCodeTTL))
		user.UpdatedAt = now
		err = tx.Users().Update(ctx, user)
		if err != nil {
			return apperr.Internal(err, "store verification code")
		}
		return nil
	})
	if err != nil {
		return Delivery{}, apperr.Internal(err, "resend verification code")
	}

	return s.notify(ctx, user, TemplateVerify, WarnVerifyEmail, map[string]any{
		"code":           code,
		"expiry_minutes": minutes(s.cfg.VerificationCodeTTL),
	}), nil
}

// Login checks credentials and issues a session token for an active account.
// Unknown emails and wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ *LoginResult, err error) {
	defer s.observe("login", &err)

	email = validation.NormalizeEmail(email)

	user, err := s.store.Users().ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash())
		return nil, apperr.New(apperr.KindUnauthorized, MsgBadCredentials)
	}
	if err != nil {
		return nil, apperr.Internal(err, "lookup user")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.New(apperr.KindUnauthorized, MsgBadCredentials)
	}
	if user.IsPending() {
		return nil, apperr.New(apperr.KindUnauthorized, MsgNotVerified)
	}

	token, err := s.tokens.Issue(user.ID, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperr.Internal(err, "issue token", "user_id", user.ID)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
		User:        user.Public(),
	}, nil
}

// ForgotPassword deletes the user's earlier reset codes, stores a fresh one
// and emails it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (_ Delivery, err error) {
	defer s.observe("forgot_password", &err)

	email = validation.NormalizeEmail(email)
	err = firstInvalid(validation.ValidateEmail(email))
	if err != nil {
		return Delivery{}, err
	}

	code, codeHash, err := s.newCode()
	if err != nil {
		return Delivery{}, err
	}

	var user *model.User
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().ByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.New(apperr.KindNotFound, MsgInvalidEmail)
		}
		if err != nil {
			return apperr.Internal(err, "lookup user")
		}

		err = tx.ResetTokens().DeleteByUser(ctx, user.ID)
		if err != nil {
			return apperr.Internal(err, "delete reset tokens", "user_id", user.ID)
		}

		now := s.now().UTC()
		err = tx.ResetTokens().Create(ctx, &model.PasswordResetToken{
			UserID:    user.ID,
			CodeHash:  codeHash,
			ExpiresAt: now.Add(s.cfg.ResetCodeTTL),
			CreatedAt: now,
		})
		if err != nil {
			return apperr.Internal(err, "create reset token", "user_id", user.ID)
		}
		return nil
	})
	if err != nil {
		return Delivery{}, apperr.Internal(err, "forgot password")
	}

	return s.notify(ctx, user, TemplateReset, WarnResetEmail, map[string]any{
		"code":           code,
		"expiry_minutes": minutes(s.cfg.ResetCodeTTL),
	}), nil
}

// ResetPassword sets a new password using the latest reset code. The code is
// consumed on success.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (err error) {
	defer s.observe("reset_password", &err)

	email = validation.NormalizeEmail(email)
	err = firstInvalid(
		validation.ValidateEmail(email),
		validation.ValidateCode(code),
		validation.ValidatePassword(newPassword),
	)
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err, "hash password")
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().ByEmail(ctx, email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.New(apperr.KindNotFound, MsgInvalidEmail)
		}
		if err != nil {
			return apperr.Internal(err, "lookup user")
		}

		token, err := tx.ResetTokens().LatestByUser(ctx, user.ID)
		if errors.Is(err, repository.ErrTokenNotFound) {
			return apperr.New(apperr.KindInvalidRequest, MsgResetNoToken)
		}
		if err != nil {
			return apperr.Internal(err, "lookup reset token", "user_id", user.ID)
		}

		now := s.now().UTC()
		switch {
		case !s.codes.Verify(token.CodeHash, code):
			return apperr.New(apperr.KindInvalidRequest, MsgResetInvalidCode)
		case token.IsExpired(now):
			return apperr.New(apperr.KindInvalidRequest, MsgResetExpired)
		case token.IsUsed():
			return apperr.New(apperr.KindInvalidRequest, MsgResetUsed)
		}

		err = tx.ResetTokens().MarkUsed(ctx, token.ID, now)
		if errors.Is(err, repository.ErrTokenUsed) {
			return apperr.New(apperr.KindInvalidRequest, MsgResetUsed)
		}
		if err != nil {
			return apperr.Internal(err, "mark reset token used", "token_id", token.ID)
		}

		user.PasswordHash = passwordHash
		user.UpdatedAt = now
		err = tx.Users().Update(ctx, user)
		if err != nil {
			return apperr.Internal(err, "update password", "user_id", user.ID)
		}

		slog.InfoContext(ctx, "password reset", "user_id", user.ID)
		return nil
	})
	if err != nil {
		return apperr.Internal(err, "reset password")
	}

	return nil
}

// ReadCurrentUser resolves a session token to its account.
func (s *AuthService) ReadCurrentUser(ctx context.Context, token string) (_ *model.PublicUser, err error) {
	defer s.observe("me", &err)

	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, MsgInvalidSession)
	}

	user, err := s.store.Users().ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.New(apperr.KindUnauthorized, MsgInvalidSession)
	}
	if err != nil {
		return nil, apperr.Internal(err, "lookup user", "user_id", userID)
	}

	public := user.Public()
	return &public, nil
}

// CleanupExpiredResetTokens removes reset codes that expired or were used
// before now.
func (s *AuthService) CleanupExpiredResetTokens(ctx context.Context) (int64, error) {
	n, err := s.store.ResetTokens().CleanupExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, apperr.Internal(err, "cleanup reset tokens")
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired reset tokens removed", "count", n)
	}
	return n, nil
}

func (s *AuthService) newCode() (code, hash string, err error) {
	code, err = s.generate()
	if err != nil {
		return "", "", apperr.Internal(err, "generate code")
	}
	hash, err = s.codes.Hash(code)
	if err != nil {
		return "", "", apperr.Internal(err, "hash code")
	}
	return code, hash, nil
}

// notify runs after the state change is committed. Failures are logged and
// reported as a warning.
func (s *AuthService) notify(ctx context.Context, user *model.User, template, warning string, data map[string]any) Delivery {
	vars := map[string]any{"username": user.Username}
	maps.Copy(vars, data)

	err := s.notifier.Send(ctx, user.Email, "", template, vars)
	s.metrics.ObserveEmail(template, err == nil)
	if err != nil {
		slog.WarnContext(ctx, "email delivery failed", "type", template, "user_id", user.ID, "error", err)
		return Delivery{Warning: warning}
	}

	return Delivery{Sent: true}
}

func (s *AuthService) observe(operation string, errp *error) {
	outcome := metrics.OutcomeSuccess
	if err := *errp; err != nil {
		outcome = metrics.OutcomeFailure
		if apperr.Is(err, apperr.KindInternal) {
			outcome = metrics.OutcomeError
		}
	}
	s.metrics.ObserveAuth(operation, outcome)
}

// firstInvalid returns the first validation failure as a VALIDATION error.
func firstInvalid(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return apperr.New(apperr.KindValidation, err.Error())
		}
	}
	return nil
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}
