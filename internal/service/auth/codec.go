package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openfare/openfare/internal/apperrors"
	"github.com/openfare/openfare/internal/models"
)

// TokenKind tags every issued token so an access token can never be
// presented where a refresh token is expected, and vice versa
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

const defaultSigningMethod = "HS256"

type TokenClaims struct {
	jwt.RegisteredClaims
	UserID int64     `json:"uid"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	Kind   TokenKind `json:"typ"`
}

type CodecConfig struct {
	// Secret to sign access tokens
	// Required to be set
	AccessSecret string

	// Secret to sign refresh tokens
	// Falls back to AccessSecret when empty
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string
}

// TokenCodec is the single place that decides what makes a token valid.
// Sign and verify are pure over the token bytes and the process wide
// secrets, so concurrent use needs no locking.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	alg           jwt.SigningMethod
}

func NewTokenCodec(cfg CodecConfig) (*TokenCodec, error) {
	if cfg.AccessSecret == "" {
		return nil, errors.New("access token secret must not be empty")
	}

	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	return &TokenCodec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		alg:           jwt.GetSigningMethod(cfg.Alg),
	}, nil
}

// Issue mints a signed token for the principal
// ttl may be negative, which produces an already expired token (useful in tests)
func (c *TokenCodec) Issue(p models.Principal, kind TokenKind, ttl time.Duration) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		c.alg,
		TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: p.ID,
			Email:  p.Email,
			Role:   string(p.Role),
			Kind:   kind,
		},
	)

	signed, err := token.SignedString(c.secretFor(kind))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", kind, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify parses the token, checks its signature and expiry against the
// local clock (no leeway) and rejects kind mismatches.
// Failures are always one of the apperrors token errors, never a panic.
func (c *TokenCodec) Verify(token string, kind TokenKind) (models.Principal, error) {
	claims, err := c.verifyClaims(token, kind)
	if err != nil {
		return models.Principal{}, err
	}

	return models.Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  models.Role(claims.Role),
	}, nil
}

func (c *TokenCodec) verifyClaims(token string, kind TokenKind) (*TokenClaims, error) {
	claims := &TokenClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return c.secretFor(kind), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, apperrors.ErrTokenSignatureInvalid
	default:
		return nil, apperrors.ErrTokenMalformed
	}

	if claims.Kind != kind {
		return nil, apperrors.ErrTokenWrongType
	}

	return claims, nil
}

func (c *TokenCodec) secretFor(kind TokenKind) []byte {
	if kind == TokenKindRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}
