package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Login merges "no such user" and "wrong password" on purpose,
	// so callers can't probe which emails are registered
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenWrongType        = errors.New("token type mismatch")
	ErrTokenRevoked          = errors.New("token is revoked")

	ErrRefreshTokenMissing = errors.New("refresh token not provided")
)
