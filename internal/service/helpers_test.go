package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/templui/apiplate/internal/db/dbtest"
	"github.com/templui/apiplate/internal/metrics"
	"github.com/templui/apiplate/internal/repository"
	"github.com/templui/apiplate/internal/security"
	"github.com/templui/apiplate/internal/service/mailer"
	"golang.org/x/crypto/bcrypt"
)

type recordingProvider struct {
	sent []mailer.Message
	err  error
}

func (p *recordingProvider) Send(_ context.Context, msg mailer.Message) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func (p *recordingProvider) Name() string {
	return "recording"
}

type notification struct {
	to       string
	template string
	data     map[string]any
}

// recordingNotifier keeps every notification, including failed ones.
type recordingNotifier struct {
	sent []notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, to, _ string, templateID string, data map[string]any) error {
	n.sent = append(n.sent, notification{to: to, template: templateID, data: data})
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) notification {
	t.Helper()
	require.NotEmpty(t, n.sent, "no notification sent")
	return n.sent[len(n.sent)-1]
}

// lastCode returns the plaintext code from the latest notification.
func (n *recordingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	code, ok := n.last(t).data["code"].(string)
	require.True(t, ok, "notification carries no code")
	return code
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type authFixture struct {
	svc      *AuthService
	store    repository.Store
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	clock    *testClock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	store := repository.NewStore(dbtest.New(t))
	hasher := security.NewPasswordHasher(bcrypt.MinCost)
	notifier := &recordingNotifier{}
	m := metrics.New()
	clock := &testClock{now: time.Now().UTC()}

	svc := NewAuthService(
		store,
		hasher,
		security.NewCodeIssuer(hasher),
		security.NewTokenIssuer("test-secret"),
		notifier,
		m,
		AuthConfig{
			TokenTTL:            30 * time.Minute,
			VerificationCodeTTL: 15 * time.Minute,
			ResetCodeTTL:        15 * time.Minute,
		},
	)
	svc.now = clock.Now

	return &authFixture{svc: svc, store: store, notifier: notifier, metrics: m, clock: clock}
}

// useCodes makes the service hand out the given codes in order, then random
// ones.
func (f *authFixture) useCodes(codes ...string) {
	random := f.svc.generate
	f.svc.generate = func() (string, error) {
		if len(codes) == 0 {
			return random()
		}
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
}

// registerActive registers and verifies a user, returning the user id.
func (f *authFixture) registerActive(t *testing.T, username, email, password string) string {
	t.Helper()
	ctx := context.Background()

	res, err := f.svc.Register(ctx, username, email, password)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, email, f.notifier.lastCode(t))
	require.NoError(t, err)
	return res.User.ID
}
