package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_FixedWindow(t *testing.T) {
	t.Parallel()

	newLimiter := func(t *testing.T, limit int, window time.Duration, now func() time.Time) *FixedWindow {
		t.Helper()
		fw := NewFixedWindow(limit, window)
		if now != nil {
			fw.now = now
		}
		t.Cleanup(fw.Close)
		return fw
	}

	t.Run("allows up to limit", func(t *testing.T) {
		fw := newLimiter(t, 3, time.Minute, nil)

		for i := 0; i < 3; i++ {
			require.True(t, fw.Allow("10.0.0.1"), "request %d should pass", i+1)
		}
		require.False(t, fw.Allow("10.0.0.1"), "request over the limit should be rejected")
	})

	t.Run("keys counted independently", func(t *testing.T) {
		fw := newLimiter(t, 1, time.Minute, nil)

		require.True(t, fw.Allow("10.0.0.1"))
		require.False(t, fw.Allow("10.0.0.1"))
		require.True(t, fw.Allow("10.0.0.2"), "another key should have its own window")
	})

	t.Run("window reset allows again", func(t *testing.T) {
		current := time.Now()
		fw := newLimiter(t, 1, time.Minute, func() time.Time { return current })

		require.True(t, fw.Allow("10.0.0.1"))
		require.False(t, fw.Allow("10.0.0.1"))

		current = current.Add(time.Minute)
		require.True(t, fw.Allow("10.0.0.1"), "new window should start fresh")
	})

	t.Run("retry after reports window remainder", func(t *testing.T) {
		current := time.Now()
		fw := newLimiter(t, 1, time.Minute, func() time.Time { return current })

		require.Equal(t, time.Duration(0), fw.RetryAfter("10.0.0.1"), "no window yet")

		fw.Allow("10.0.0.1")
		current = current.Add(15 * time.Second)

		require.Equal(t, 45*time.Second, fw.RetryAfter("10.0.0.1"))
	})

	t.Run("sweep drops stale windows", func(t *testing.T) {
		current := time.Now()
		fw := newLimiter(t, 1, time.Minute, func() time.Time { return current })

		fw.Allow("10.0.0.1")
		current = current.Add(2 * time.Minute)
		fw.sweep()

		fw.mu.Lock()
		defer fw.mu.Unlock()
		require.Empty(t, fw.entries)
	})
}
