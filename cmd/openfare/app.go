package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openfare/openfare/internal/db"
	"github.com/openfare/openfare/internal/handlers"
	"github.com/openfare/openfare/internal/logger"
	"github.com/openfare/openfare/internal/repository/postgres"
	"github.com/openfare/openfare/internal/service/auth"
	"github.com/openfare/openfare/internal/service/ratelimit"
	"github.com/openfare/openfare/internal/service/revocation"
)

const (
	rateLimitRequests = 100
	rateLimitWindow   = 15 * time.Minute
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	userRepo := &postgres.UserRepo{DB: pool}

	// Revocation marks live in redis when configured, memory otherwise
	var revocations revocation.Registry
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("error while parsing redis url. Err: %w", err)
		}
		revocations = revocation.NewRedisRegistry(redis.NewClient(opts), c.RefreshTokenTTL)
	} else {
		revocations = revocation.NewMemoryRegistry(c.RefreshTokenTTL)
	}

	// Initialize services
	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		AccessSecret:  c.JWTSecret,
		RefreshSecret: c.RefreshTokenSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{
		AccessTokenTTL:  c.AccessTokenTTL,
		RefreshTokenTTL: c.RefreshTokenTTL,
		SecureCookies:   c.Environment == logger.EnvProduction,
	}, codec, userRepo, revocations)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	limiter := ratelimit.NewFixedWindow(rateLimitRequests, rateLimitWindow)

	mux := handlers.NewRouter(authService, userRepo, limiter, log)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
