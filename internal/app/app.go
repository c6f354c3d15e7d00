// Package app provides the application lifecycle management for the
// sociallink service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/zhengbin-app/sociallink/internal/api"
	"github.com/zhengbin-app/sociallink/internal/audit"
	"github.com/zhengbin-app/sociallink/internal/config"
	"github.com/zhengbin-app/sociallink/internal/database"
	"github.com/zhengbin-app/sociallink/internal/logger"
	"github.com/zhengbin-app/sociallink/internal/metrics"
	"github.com/zhengbin-app/sociallink/internal/oauth"
	"github.com/zhengbin-app/sociallink/internal/platform"
	"github.com/zhengbin-app/sociallink/internal/publish"
	"github.com/zhengbin-app/sociallink/internal/session"
	"github.com/zhengbin-app/sociallink/internal/verify"
)

const (
	// DefaultShutdownTimeout is the default timeout for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
	// PingTimeout bounds the startup connectivity checks
	PingTimeout = 5 * time.Second
)

// App represents the sociallink application with all its dependencies
type App struct {
	config      *config.Config
	logger      logger.Logger
	db          *sqlx.DB
	redisClient redis.UniversalClient
	httpServer  *http.Server
	version     string
}

// Options contains configuration for creating a new App
type Options struct {
	ConfigPath string
	Version    string
}

// New creates a new App instance with all dependencies initialized
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	appLogger = appLogger.With(
		logger.String("service", "sociallink"),
		logger.String("version", opts.Version),
	)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to Postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
		_ = db.Close()
		_ = appLogger.Sync()
		return nil, fmt.Errorf("connect to Redis: %w", pingErr)
	}

	accounts := database.NewAccountRepository(db)
	posts := database.NewPostRepository(db)

	verifier := verify.NewVerifier(verify.Config{
		TwitterBearerToken:   cfg.Platforms.TwitterBearerToken,
		LinkedInAccessToken:  cfg.Platforms.LinkedInAccessToken,
		FacebookAccessToken:  cfg.Platforms.FacebookAccessToken,
		InstagramAccessToken: cfg.Platforms.InstagramAccessToken,
	}, appLogger)

	sessions := session.NewRedisStore(redisClient, cfg.OAuth.PendingTTL)
	auditor := audit.NewNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, appLogger)

	exchanger := oauth.NewClient(cfg.OAuth.ExchangeURL, cfg.OAuth.ExchangeTimeout, appLogger)
	callbacks := oauth.NewHandler(accounts, sessions, exchanger, appLogger)

	adapters := platform.NewRegistry(appLogger)
	tracker := metrics.NewTracker(redisClient, appLogger)
	tokens := publish.NewStoredTokenResolver(accounts)
	dispatcher := publish.NewDispatcher(accounts, posts, tokens, adapters, tracker, appLogger)

	handlers := api.NewHandlers(api.HandlersConfig{
		Accounts:      accounts,
		Posts:         posts,
		Publisher:     dispatcher,
		Verifier:      verifier,
		Callbacks:     callbacks,
		Stats:         tracker,
		Sessions:      sessions,
		Auditor:       auditor,
		AuthorizeURLs: cfg.OAuth.AuthorizeURLs,
		Logger:        appLogger,
		Version:       opts.Version,
	})

	router := api.NewRouter(handlers, cfg.Auth.JWTSecret, cfg.Debug, appLogger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		redisClient: redisClient,
		httpServer:  httpServer,
		version:     opts.Version,
	}, nil
}

// Run starts the HTTP server and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.logger.Info("Starting HTTP server",
			logger.String("address", a.config.Server.Address),
			logger.Bool("debug", a.config.Debug),
		)
		serverErr <- a.httpServer.ListenAndServe()
	}()

	return a.waitForShutdown(ctx, serverErr)
}

// waitForShutdown handles graceful shutdown
func (a *App) waitForShutdown(ctx context.Context, serverErr chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("Shutting down gracefully",
			logger.String("signal", sig.String()),
		)
		a.shutdownHTTPServer()
		return nil

	case <-ctx.Done():
		a.shutdownHTTPServer()
		return nil

	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Server error", logger.Error(err))
			return err
		}
		return nil
	}
}

// shutdownHTTPServer gracefully shuts down the HTTP server
func (a *App) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("HTTP server stopped")
	}
}

// Close cleans up resources
func (a *App) Close() error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close database", logger.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("Failed to close Redis client", logger.Error(err))
		}
	}
	return a.logger.Sync()
}

// Logger returns the application logger
func (a *App) Logger() logger.Logger {
	return a.logger
}
