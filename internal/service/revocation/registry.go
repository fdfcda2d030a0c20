// Package revocation tracks which principals had their refresh tokens
// invalidated server side. Tokens are stateless, so this registry is the
// only way a logout (or an admin disabling an account) takes effect
// before the token's natural expiry.
package revocation

import (
	"context"
	"time"
)

// Registry records per principal revocations.
// Token issue times carry second precision, so marks are stored at the
// same precision and a refresh token is revoked when its issue time is
// strictly before the mark. A token minted in the same second as the
// mark is treated as newer than it. Records may be dropped once the
// refresh tokens they would block are expired anyway.
type Registry interface {
	// Revoke marks all refresh tokens issued before the current second as untrusted
	Revoke(ctx context.Context, userID int64) error

	// RevokedSince returns the revocation mark for the user if one exists
	RevokedSince(ctx context.Context, userID int64) (time.Time, bool, error)
}

// IsRevoked reports whether a token issued at issuedAt is covered by a
// revocation mark for the user
func IsRevoked(ctx context.Context, r Registry, userID int64, issuedAt time.Time) (bool, error) {
	since, ok, err := r.RevokedSince(ctx, userID)
	if err != nil || !ok {
		return false, err
	}

	return issuedAt.Before(since), nil
}
