package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/user"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (n *recordingNotifier) record(kind string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, kind)
	return nil
}

func (n *recordingNotifier) SendVerificationEmail(u *user.User, token string) error {
	return n.record("verification")
}

func (n *recordingNotifier) SendPasswordResetEmail(u *user.User, token string) error {
	return n.record("reset")
}

func (n *recordingNotifier) SendWelcomeEmail(u *user.User) error {
	return n.record("welcome")
}

func (n *recordingNotifier) SendPasswordChangedEmail(u *user.User) error {
	return n.record("changed")
}

func TestDispatcher_DeliversAsync(t *testing.T) {
	notifier := &recordingNotifier{}
	d := NewDispatcher(notifier, zap.NewNop())
	u := &user.User{ID: "user-1", Email: "alice@example.com"}

	d.DispatchVerificationEmail(u, "token")
	d.DispatchWelcomeEmail(u)
	d.Wait()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.ElementsMatch(t, []string{"verification", "welcome"}, notifier.sent)
}

func TestDispatcher_FailureNeverPropagates(t *testing.T) {
	notifier := &recordingNotifier{fail: true}
	d := NewDispatcher(notifier, zap.NewNop())
	u := &user.User{ID: "user-1", Email: "alice@example.com"}

	// Dispatch has no error return; a failing sink must not panic or block.
	d.DispatchPasswordResetEmail(u, "token")
	d.DispatchPasswordChangedEmail(u)
	d.Wait()
}
