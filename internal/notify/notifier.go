package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/config"
	"github.com/quillhq/quill-backend/internal/user"
)

// Notifier delivers account emails. Implementations live outside this
// core (SMTP, provider APIs); LogNotifier stands in for development.
type Notifier interface {
	SendVerificationEmail(u *user.User, plaintextToken string) error
	SendPasswordResetEmail(u *user.User, plaintextToken string) error
	SendWelcomeEmail(u *user.User) error
	SendPasswordChangedEmail(u *user.User) error
}

// LogNotifier writes the would-be emails to the log. The action links are
// built the same way a real mailer would so the flows stay exercisable
// end to end in development.
type LogNotifier struct {
	config *config.MailConfig
	log    *zap.Logger
}

func NewLogNotifier(cfg *config.MailConfig, log *zap.Logger) *LogNotifier {
	return &LogNotifier{config: cfg, log: log}
}

// Token-bearing lines log at debug only; they are the delivery channel
// here, not diagnostics.
func (n *LogNotifier) SendVerificationEmail(u *user.User, plaintextToken string) error {
	n.log.Debug("verification email",
		zap.String("to", u.Email),
		zap.String("from", n.config.FromAddress),
		zap.String("url", fmt.Sprintf("%s/verify-email?token=%s", n.config.BaseURL, plaintextToken)))
	return nil
}

func (n *LogNotifier) SendPasswordResetEmail(u *user.User, plaintextToken string) error {
	n.log.Debug("password reset email",
		zap.String("to", u.Email),
		zap.String("from", n.config.FromAddress),
		zap.String("url", fmt.Sprintf("%s/reset-password?token=%s", n.config.BaseURL, plaintextToken)))
	return nil
}

func (n *LogNotifier) SendWelcomeEmail(u *user.User) error {
	n.log.Info("welcome email",
		zap.String("to", u.Email),
		zap.String("from", n.config.FromAddress))
	return nil
}

func (n *LogNotifier) SendPasswordChangedEmail(u *user.User) error {
	n.log.Info("password changed email",
		zap.String("to", u.Email),
		zap.String("from", n.config.FromAddress))
	return nil
}
