package revocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_MemoryRegistry(t *testing.T) {
	t.Parallel()

	newRegistry := func(t *testing.T, ttl time.Duration, now func() time.Time) *MemoryRegistry {
		t.Helper()
		r := NewMemoryRegistry(ttl)
		if now != nil {
			r.now = now
		}
		t.Cleanup(r.Close)
		return r
	}

	t.Run("no mark for unknown user", func(t *testing.T) {
		r := newRegistry(t, time.Hour, nil)

		_, ok, err := r.RevokedSince(t.Context(), 1)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("revoke records mark", func(t *testing.T) {
		r := newRegistry(t, time.Hour, nil)

		require.NoError(t, r.Revoke(t.Context(), 1))

		since, ok, err := r.RevokedSince(t.Context(), 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.WithinDuration(t, time.Now(), since, time.Second)

		// Other users stay untouched
		_, ok, err = r.RevokedSince(t.Context(), 2)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("expired mark treated as absent", func(t *testing.T) {
		current := time.Now()
		r := newRegistry(t, time.Hour, func() time.Time { return current })

		require.NoError(t, r.Revoke(t.Context(), 1))

		current = current.Add(2 * time.Hour)

		_, ok, err := r.RevokedSince(t.Context(), 1)
		require.NoError(t, err)
		require.False(t, ok, "mark older than ttl should not count")
	})

	t.Run("IsRevoked covers tokens issued before the mark", func(t *testing.T) {
		r := newRegistry(t, time.Hour, nil)

		require.NoError(t, r.Revoke(t.Context(), 1))

		revoked, err := IsRevoked(t.Context(), r, 1, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.True(t, revoked, "token issued before the mark should be revoked")

		revoked, err = IsRevoked(t.Context(), r, 1, time.Now().Add(time.Minute))
		require.NoError(t, err)
		require.False(t, revoked, "token issued after the mark should pass")

		revoked, err = IsRevoked(t.Context(), r, 2, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.False(t, revoked, "other users should not be affected")
	})

	t.Run("token minted in the same second as the mark passes", func(t *testing.T) {
		at := time.Date(2026, 8, 30, 12, 0, 5, 700_000_000, time.UTC)
		r := newRegistry(t, time.Hour, func() time.Time { return at })

		require.NoError(t, r.Revoke(t.Context(), 1))

		// Issue times are second-truncated, so a login right after the
		// revocation carries 12:00:05 while the mark does too.
		revoked, err := IsRevoked(t.Context(), r, 1, at.Truncate(time.Second))
		require.NoError(t, err)
		require.False(t, revoked)

		revoked, err = IsRevoked(t.Context(), r, 1, at.Truncate(time.Second).Add(-time.Second))
		require.NoError(t, err)
		require.True(t, revoked, "tokens from earlier seconds stay revoked")
	})
}
