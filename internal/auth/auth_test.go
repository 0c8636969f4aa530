package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillhq/quill-backend/internal/clock"
	"github.com/quillhq/quill-backend/internal/config"
	"github.com/quillhq/quill-backend/internal/notify"
	"github.com/quillhq/quill-backend/internal/refreshtoken"
	"github.com/quillhq/quill-backend/internal/user"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:              "test-secret-key",
		AccessTokenDuration:    15 * time.Minute,
		RefreshTokenDuration:   7 * 24 * time.Hour,
		RememberMeDuration:     30 * 24 * time.Hour,
		EphemeralTokenDuration: 10 * time.Minute,
		BcryptCost:             bcrypt.MinCost,
	}
}

// captureNotifier records the plaintext tokens that would go out by email
// so tests can complete the verification and reset flows.
type captureNotifier struct {
	mu                sync.Mutex
	verificationToken map[string]string // by email
	resetToken        map[string]string
	welcomed          []string
	passwordChanged   []string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		verificationToken: make(map[string]string),
		resetToken:        make(map[string]string),
	}
}

func (n *captureNotifier) SendVerificationEmail(u *user.User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verificationToken[u.Email] = token
	return nil
}

func (n *captureNotifier) SendPasswordResetEmail(u *user.User, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetToken[u.Email] = token
	return nil
}

func (n *captureNotifier) SendWelcomeEmail(u *user.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomed = append(n.welcomed, u.Email)
	return nil
}

func (n *captureNotifier) SendPasswordChangedEmail(u *user.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.passwordChanged = append(n.passwordChanged, u.Email)
	return nil
}

func (n *captureNotifier) lastVerificationToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.verificationToken[email]
}

func (n *captureNotifier) lastResetToken(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resetToken[email]
}

type fixture struct {
	svc      *Service
	users    *user.MockRepository
	tokens   *refreshtoken.MockRepository
	clk      *clock.Fixed
	mail     *notify.Dispatcher
	notifier *captureNotifier
}

func newTestFixture(t *testing.T) *fixture {
	users := user.NewMockRepository()
	tokens := refreshtoken.NewMockRepository()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	notifier := newCaptureNotifier()
	mail := notify.NewDispatcher(notifier, zap.NewNop())

	return &fixture{
		svc:      NewService(newTestConfig(), newTestLogger(t), users, tokens, mail, clk),
		users:    users,
		tokens:   tokens,
		clk:      clk,
		mail:     mail,
		notifier: notifier,
	}
}

// faultyUserRepo wraps the in-memory repository so tests can inject
// storage errors on individual operations.
type faultyUserRepo struct {
	user.Repository
	findByIdentifierErr error
	createErr           error
	updateLastLoginErr  error
}

func (r *faultyUserRepo) FindByIdentifier(identifier string) (*user.User, error) {
	if r.findByIdentifierErr != nil {
		return nil, r.findByIdentifierErr
	}
	return r.Repository.FindByIdentifier(identifier)
}

func (r *faultyUserRepo) Create(u *user.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.Repository.Create(u)
}

func (r *faultyUserRepo) UpdateLastLogin(id string, at time.Time) error {
	if r.updateLastLoginErr != nil {
		return r.updateLastLoginErr
	}
	return r.Repository.UpdateLastLogin(id, at)
}

// newFaultyFixture wires the service through a faultyUserRepo. With no
// errors set it behaves exactly like newTestFixture.
func newFaultyFixture(t *testing.T) (*fixture, *faultyUserRepo) {
	users := user.NewMockRepository()
	faulty := &faultyUserRepo{Repository: users}
	tokens := refreshtoken.NewMockRepository()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	notifier := newCaptureNotifier()
	mail := notify.NewDispatcher(notifier, zap.NewNop())

	f := &fixture{
		svc:      NewService(newTestConfig(), newTestLogger(t), faulty, tokens, mail, clk),
		users:    users,
		tokens:   tokens,
		clk:      clk,
		mail:     mail,
		notifier: notifier,
	}
	return f, faulty
}

// registerVerified registers a user and completes email verification.
func (f *fixture) registerVerified(t *testing.T, username, email, password string) *user.User {
	t.Helper()

	u, err := f.svc.Register(username, email, password)
	require.NoError(t, err)

	f.mail.Wait()
	token := f.notifier.lastVerificationToken(u.Email)
	require.NotEmpty(t, token)

	verified, err := f.svc.VerifyEmail(token)
	require.NoError(t, err)
	return verified
}
