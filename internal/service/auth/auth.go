package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openfare/openfare/internal/apperrors"
	"github.com/openfare/openfare/internal/models"
	"github.com/openfare/openfare/internal/repository"
	"github.com/openfare/openfare/internal/service/revocation"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	defaultAccessAuthScheme  = "Bearer"
	defaultRefreshCookieName = "refreshToken"
	defaultRefreshCookiePath = "/api/auth/refresh"
	defaultSessionCookieName = "token"
)

// Hash of a throwaway password. Compared against when login hits an
// unknown email, so both failure paths do the same amount of work.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type Config struct {
	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Hasher to use during signup or login
	// BcryptHasher is used if not set
	Hasher PasswordHasher

	// Cookie names and the path the refresh cookie is scoped to
	RefreshCookieName string
	RefreshCookiePath string
	SessionCookieName string

	// Set the Secure attribute on cookies (on in production)
	SecureCookies bool
}

// AuthService owns the session lifecycle: it verifies credentials,
// mints token pairs, rotates them on refresh and talks to the
// revocation registry on logout.
type AuthService struct {
	codec       *TokenCodec
	hasher      PasswordHasher
	userRepo    repository.UserRepo
	revocations revocation.Registry

	accessTTL  time.Duration
	refreshTTL time.Duration

	refreshCookieName string
	refreshCookiePath string
	sessionCookieName string
	secureCookies     bool
}

func NewService(cfg Config, codec *TokenCodec, userRepo repository.UserRepo, revocations revocation.Registry) (*AuthService, error) {
	if codec == nil {
		return nil, errors.New("token codec must not be nil")
	}
	if userRepo == nil {
		return nil, errors.New("user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTokenTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTokenTTL, defaultRefreshTokenTTL)

	setDefaultString := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	setDefaultString(&cfg.RefreshCookieName, defaultRefreshCookieName)
	setDefaultString(&cfg.RefreshCookiePath, defaultRefreshCookiePath)
	setDefaultString(&cfg.SessionCookieName, defaultSessionCookieName)

	if revocations == nil {
		revocations = revocation.NewMemoryRegistry(cfg.RefreshTokenTTL)
	}

	return &AuthService{
		codec:             codec,
		hasher:            hasher,
		userRepo:          userRepo,
		revocations:       revocations,
		accessTTL:         cfg.AccessTokenTTL,
		refreshTTL:        cfg.RefreshTokenTTL,
		refreshCookieName: cfg.RefreshCookieName,
		refreshCookiePath: cfg.RefreshCookiePath,
		sessionCookieName: cfg.SessionCookieName,
		secureCookies:     cfg.SecureCookies,
	}, nil
}

type SignupParams struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     models.Role
}

func (s *AuthService) Signup(ctx context.Context, params SignupParams) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, error=%w", err)
	}

	role := models.RolePassenger
	if params.Role != "" {
		role, err = models.ParseRole(string(params.Role))
		if err != nil {
			return user, err
		}
	}

	user, err = s.userRepo.CreateUser(ctx, repository.CreateUserParams{
		Name:         params.Name,
		Email:        params.Email,
		Phone:        params.Phone,
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		return user, err
	}

	return user, nil
}

// Login verifies credentials and mints a fresh token pair.
// Unknown email and wrong password are indistinguishable to the caller:
// both come back as apperrors.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		// Burn a compare anyway so the miss costs the same as a mismatch
		_ = s.hasher.Compare(dummyPasswordHash, password)
		return models.TokenPair{}, models.User{}, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, models.User{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.IssuePair(user.Principal())
	if err != nil {
		return models.TokenPair{}, models.User{}, err
	}

	return pair, user, nil
}

// Refresh validates the refresh token and rotates it: the caller gets a
// brand new access and refresh pair. The principal is re-read from the
// store, so a token for a deleted user never refreshes.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	claims, err := s.codec.verifyClaims(refreshToken, TokenKindRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return models.TokenPair{}, apperrors.ErrUserNotFound
		}
		return models.TokenPair{}, fmt.Errorf("error while loading user. Err: %w", err)
	}

	revoked, err := revocation.IsRevoked(ctx, s.revocations, user.ID, claims.IssuedAt.Time)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("error while checking revocation. Err: %w", err)
	}
	if revoked {
		return models.TokenPair{}, apperrors.ErrTokenRevoked
	}

	return s.IssuePair(user.Principal())
}

// Logout revokes the principal's outstanding refresh tokens.
// Identification is best effort: an absent or invalid access token is
// not an error, the caller clears cookies either way.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	p, err := s.codec.Verify(accessToken, TokenKindAccess)
	if err != nil {
		return nil
	}

	if err := s.revocations.Revoke(ctx, p.ID); err != nil {
		return fmt.Errorf("error while revoking tokens. Err: %w", err)
	}

	return nil
}

// AuthenticateHeader resolves the principal from the Authorization header
func (s *AuthService) AuthenticateHeader(_ context.Context, r *http.Request) (models.Principal, error) {
	token := BearerToken(r)
	if token == "" {
		return models.Principal{}, apperrors.ErrTokenMalformed
	}

	return s.codec.Verify(token, TokenKindAccess)
}

// AuthenticateCookie resolves the principal from the session cookie.
// Same codec and checks as the header path, only the credential location differs.
func (s *AuthService) AuthenticateCookie(_ context.Context, r *http.Request) (models.Principal, error) {
	cookie, err := r.Cookie(s.sessionCookieName)
	if err != nil || cookie.Value == "" {
		return models.Principal{}, apperrors.ErrTokenMalformed
	}

	return s.codec.Verify(cookie.Value, TokenKindAccess)
}

// SetTokenPair writes the refresh cookie (scoped to the refresh endpoint)
// and the session cookie pages are gated on. The access token additionally
// goes to the caller in the response body.
func (s *AuthService) SetTokenPair(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     s.refreshCookiePath,
		MaxAge:   int(s.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookieName,
		Value:    pair.Access.Value,
		Path:     "/",
		MaxAge:   int(s.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearAuthCookies expires both auth cookies
func (s *AuthService) ClearAuthCookies(w http.ResponseWriter) {
	for _, c := range []struct {
		name string
		path string
	}{
		{s.refreshCookieName, s.refreshCookiePath},
		{s.sessionCookieName, "/"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// ReadRefreshToken extracts the refresh token from the request cookie
func (s *AuthService) ReadRefreshToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", apperrors.ErrRefreshTokenMissing
	}

	return cookie.Value, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
// Returns empty string if the header is absent or not bearer shaped.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], defaultAccessAuthScheme) {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// IssuePair mints an access and refresh token pair for the principal
func (s *AuthService) IssuePair(p models.Principal) (models.TokenPair, error) {
	access, err := s.codec.Issue(p, TokenKindAccess, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.codec.Issue(p, TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
