package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/user"
)

// Dispatcher sends notifications fire-and-forget: every Dispatch* call
// returns immediately and delivery failures go only to the log, never to
// the caller's error channel.
type Dispatcher struct {
	notifier Notifier
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		log:      log,
	}
}

func (d *Dispatcher) DispatchVerificationEmail(u *user.User, plaintextToken string) {
	d.dispatch("verification email", u, func() error {
		return d.notifier.SendVerificationEmail(u, plaintextToken)
	})
}

func (d *Dispatcher) DispatchPasswordResetEmail(u *user.User, plaintextToken string) {
	d.dispatch("password reset email", u, func() error {
		return d.notifier.SendPasswordResetEmail(u, plaintextToken)
	})
}

func (d *Dispatcher) DispatchWelcomeEmail(u *user.User) {
	d.dispatch("welcome email", u, func() error {
		return d.notifier.SendWelcomeEmail(u)
	})
}

func (d *Dispatcher) DispatchPasswordChangedEmail(u *user.User) {
	d.dispatch("password changed email", u, func() error {
		return d.notifier.SendPasswordChangedEmail(u)
	})
}

func (d *Dispatcher) dispatch(kind string, u *user.User, send func() error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := send(); err != nil {
			d.log.Error("failed to send "+kind,
				zap.String("user_id", u.ID),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all in-flight deliveries finish. Used on shutdown and
// in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
