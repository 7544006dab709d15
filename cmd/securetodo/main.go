package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/digitalrehman/secure-todo-flow/internal/config"
	"github.com/digitalrehman/secure-todo-flow/internal/googleauth"
	httptransport "github.com/digitalrehman/secure-todo-flow/internal/http"
	"github.com/digitalrehman/secure-todo-flow/internal/http/handler"
	httpmiddleware "github.com/digitalrehman/secure-todo-flow/internal/http/middleware"
	"github.com/digitalrehman/secure-todo-flow/internal/notify"
	"github.com/digitalrehman/secure-todo-flow/internal/repository"
	"github.com/digitalrehman/secure-todo-flow/internal/server"
	"github.com/digitalrehman/secure-todo-flow/internal/service"
	"github.com/digitalrehman/secure-todo-flow/internal/telemetry"
	"github.com/digitalrehman/secure-todo-flow/internal/token"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newUserRepository,
			newTodoRepository,
			newNotifier,
			newEmailSender,
			newSMSSender,
			newGoogleVerifier,
			newTokenIssuer,
			service.NewAuthService,
			service.NewTodoService,
			handler.NewAuthHandler,
			handler.NewTodoHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, runMigrations, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return repository.NewPostgresTodoRepo(pool)
}

func newNotifier(logger *zap.Logger) *notify.LogNotifier {
	return notify.NewLogNotifier(logger)
}

func newEmailSender(n *notify.LogNotifier) notify.EmailSender {
	return n
}

func newSMSSender(n *notify.LogNotifier) notify.SMSSender {
	return n
}

func newGoogleVerifier(cfg config.Config) googleauth.Verifier {
	return googleauth.NewTokenInfoVerifier(cfg.GoogleClientID)
}

func newTokenIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer([]byte(cfg.SessionSecret), cfg.SessionTokenTTL)
}

func newAuthMiddleware(tokens *token.Issuer, users repository.UserRepository) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Tokens: tokens, Users: users}
}

func runMigrations(cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations applied")
	return nil
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
