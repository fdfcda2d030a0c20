// Package integration wires the production stack on top of a rolled
// back transaction so the flow tests run against the real router.
package integration

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/openfare/openfare/internal/handlers"
	"github.com/openfare/openfare/internal/logger"
	"github.com/openfare/openfare/internal/repository/postgres"
	"github.com/openfare/openfare/internal/service/auth"
	"github.com/openfare/openfare/internal/service/ratelimit"
	"github.com/openfare/openfare/internal/service/revocation"
	"github.com/openfare/openfare/internal/testutil"
)

type Services struct {
	AuthService *auth.AuthService
	UserRepo    *postgres.UserRepo
	Revocations *revocation.MemoryRegistry
}

// Options tune the stack under test
type Options struct {
	// Rate limiter to put in front of the auth endpoints, nil disables it
	Limiter ratelimit.Limiter
}

// RunTx starts an http server with production services inside a db
// transaction and rolls everything back when fn returns
func RunTx(dbpool *pgxpool.Pool, t *testing.T, opts Options, fn func(srvURL string, s Services)) {
	t.Helper()

	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		userRepo := &postgres.UserRepo{DB: tx}

		codec, err := auth.NewTokenCodec(auth.CodecConfig{AccessSecret: "test-secret"})
		require.NoError(t, err, "token codec should be created without errors")

		reg := revocation.NewMemoryRegistry(time.Hour)
		t.Cleanup(reg.Close)

		authService, err := auth.NewService(auth.Config{}, codec, userRepo, reg)
		require.NoError(t, err, "auth service should be created without errors")

		srv := httptest.NewServer(handlers.NewRouter(authService, userRepo, opts.Limiter, logger.NewNoOpLogger()))
		t.Cleanup(srv.Close)

		fn(srv.URL, Services{
			AuthService: authService,
			UserRepo:    userRepo,
			Revocations: reg,
		})
	})
}
