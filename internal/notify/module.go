package notify

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/config"
)

// NewModule returns the notification module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, log *zap.Logger) Notifier {
					return NewLogNotifier(&config.Mail, log)
				},
			),
			fx.Annotate(
				func(notifier Notifier, log *zap.Logger) *Dispatcher {
					return NewDispatcher(notifier, log)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(lifecycle fx.Lifecycle, dispatcher *Dispatcher) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			dispatcher.Wait()
			return nil
		},
	})
}
