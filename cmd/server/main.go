package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valkey-io/valkey-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"jugayaprende/internal/config"
	"jugayaprende/internal/database"
	"jugayaprende/internal/handlers"
	"jugayaprende/internal/lock"
	"jugayaprende/internal/logging"
	"jugayaprende/internal/metrics"
	"jugayaprende/internal/repository"
	"jugayaprende/internal/security"
	"jugayaprende/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Hour
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations completed")

	locker, closeLocker, err := newLocker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	configRepo := repository.NewConfigRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize services
	m := metrics.New()
	authService := service.NewAuthService(userRepo,
		security.NewTokenManager(cfg.JWTSecret, cfg.SessionDuration),
		security.NewCSRFGenerator(cfg.JWTSecret))
	configService := service.NewConfigService(configRepo)
	sessionService := service.NewSessionService(sessionRepo, configRepo, locker, m, logger, service.SessionOptions{
		StaleFinishedAfter: cfg.StaleFinishedAfter,
		StaleWaitingAfter:  cfg.StaleWaitingAfter,
		LockWait:           cfg.SessionLockWait,
	})

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
	}

	limiter := security.NewRateLimiter(cfg.RateLimitPerMinute)
	router := handlers.NewRouter(handlers.Router{
		Middleware: handlers.NewMiddleware(authService, limiter, logger),
		Auth:       handlers.NewAuthHandler(authService, oauthProviders, cfg.OAuthRedirectBaseURL, logger),
		Configs:    handlers.NewConfigHandler(configService, logger),
		Games:      handlers.NewGameHandler(sessionService, logger),
		Health:     handlers.NewHealthHandler(db, logger),
		Metrics:    m.Handler(),
		Logger:     logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sweep(gctx, sessionService, limiter, logger)
	})
	g.Go(func() error {
		logger.Info("server starting", "addr", server.Addr)
		return serve(gctx, server)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newLocker picks the shared valkey lock when VALKEY_ADDR is set, else an in-process one
func newLocker(cfg *config.Config, logger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.ValkeyAddr == "" {
		return lock.NewLocalLocker(), func() {}, nil
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.ValkeyAddr}})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to valkey: %w", err)
	}
	logger.Info("using valkey session lock", "addr", cfg.ValkeyAddr)
	return lock.NewValkeyLocker(client, "jugayaprende:lock", logger), client.Close, nil
}

// sweep deletes stale sessions and idle rate limiter entries until ctx is done
func sweep(ctx context.Context, sessions *service.SessionService, limiter *security.RateLimiter, logger *slog.Logger) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := sessions.PurgeStale(ctx); err != nil {
				logger.Error("stale session sweep failed", "error", err)
			}
			if removed := limiter.Cleanup(); removed > 0 {
				logger.Debug("rate limiter entries removed", "count", removed)
			}
		}
	}
}

// serve runs the server and shuts it down gracefully once ctx is done
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server listen failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server stopped with error: %w", err)
		}
		return nil
	}
}
