package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/auth"
	"github.com/quillhq/quill-backend/internal/database"
	"github.com/quillhq/quill-backend/internal/migration"
	"github.com/quillhq/quill-backend/internal/notify"
	"github.com/quillhq/quill-backend/internal/refreshtoken"
	"github.com/quillhq/quill-backend/internal/server"
	"github.com/quillhq/quill-backend/internal/user"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Database
		database.Module(),

		// Schema migrations
		migration.Module(),

		// Stores
		user.NewModule(),
		refreshtoken.NewModule(),

		// Notifications
		notify.NewModule(),

		// Auth Module
		auth.NewModule(),

		// Server
		fx.Provide(server.NewServer),

		// Start the server
		fx.Invoke(registerHooks),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *server.Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			srv.Stop()
			return nil
		},
	})
}
