package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/clock"
	"github.com/quillhq/quill-backend/internal/config"
	"github.com/quillhq/quill-backend/internal/notify"
	"github.com/quillhq/quill-backend/internal/refreshtoken"
	"github.com/quillhq/quill-backend/internal/user"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide clock
			fx.Annotate(
				func() clock.Clock {
					return clock.System()
				},
			),
			// Provide service
			fx.Annotate(
				func(
					config *config.AppConfig,
					log *zap.Logger,
					users user.Repository,
					tokens refreshtoken.Repository,
					mail *notify.Dispatcher,
					clk clock.Clock,
				) *Service {
					return NewService(&config.Auth, log, users, tokens, mail, clk)
				},
			),
			// Provide middleware
			fx.Annotate(
				func(svc *Service) *Middleware {
					return NewMiddleware(svc)
				},
			),
		),
	)
}
