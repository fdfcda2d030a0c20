package handlers

import (
	"context"
	"net/http"

	"github.com/openfare/openfare/internal/handlers/middleware"
	"github.com/openfare/openfare/internal/logger"
	"github.com/openfare/openfare/internal/models"
	"github.com/openfare/openfare/internal/service/auth"
	"github.com/openfare/openfare/internal/service/ratelimit"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userRepo userLister,
	limiter ratelimit.Limiter,
	l logger.Logger,
) http.Handler {
	apiauth := http.NewServeMux()
	apiauth.Handle("POST /signup", handleSignup(authService, l))
	apiauth.Handle("POST /login", handleLogin(authService, l))
	apiauth.Handle("POST /refresh", handleRefresh(authService, l))
	apiauth.Handle("POST /logout", handleLogout(authService, l))
	apiauth.Handle("GET /me", handleMe(authService))

	var authRoutes http.Handler = http.StripPrefix("/api/auth", apiauth)
	if limiter != nil {
		authRoutes = middleware.RateLimit(limiter)(authRoutes)
	}

	root := http.NewServeMux()
	root.Handle("/api/auth/", authRoutes)
	root.Handle("GET /api/users", handleListUsers(userRepo, l))
	root.Handle("GET /{$}", handleHomePage())
	root.Handle("GET /login", handleLoginPage())
	root.Handle("GET /dashboard", handleDashboardPage())

	return chain(root,
		middleware.LoggerMiddleware(l),
		middleware.Gate(middleware.DefaultGateConfig(), authService),
	)
}

type authService interface {
	// Create user with the given profile data
	// Has to return apperrors.ErrUserAlreadyExists on duplicate email
	Signup(ctx context.Context, params auth.SignupParams) (models.User, error)

	// Verify credentials and mint a token pair
	// Has to return apperrors.ErrInvalidCredentials on any credential failure
	Login(ctx context.Context, email string, password string) (models.TokenPair, models.User, error)

	// Rotate the pair using a refresh token
	// Has to return apperrors.ErrUserNotFound if the principal is gone and
	// one of the token errors if the refresh token does not verify
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Revoke the principal's refresh tokens, best effort
	Logout(ctx context.Context, accessToken string) error

	// Resolve the principal from the Authorization header or session cookie
	AuthenticateHeader(ctx context.Context, r *http.Request) (models.Principal, error)
	AuthenticateCookie(ctx context.Context, r *http.Request) (models.Principal, error)

	// Cookie plumbing
	SetTokenPair(w http.ResponseWriter, pair models.TokenPair)
	ClearAuthCookies(w http.ResponseWriter)
	ReadRefreshToken(r *http.Request) (string, error)
}

type userLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}
