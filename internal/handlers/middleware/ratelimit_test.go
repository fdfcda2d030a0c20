package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limiterFake rejects after allowed requests
type limiterFake struct {
	allowed int
	seen    map[string]int
	retry   time.Duration
}

func (f *limiterFake) Allow(key string) bool {
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[key]++
	return f.seen[key] <= f.allowed
}

func (f *limiterFake) RetryAfter(string) time.Duration { return f.retry }

func Test_RateLimit(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows under the limit", func(t *testing.T) {
		handler := RateLimit(&limiterFake{allowed: 2})(next)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("rejects over the limit", func(t *testing.T) {
		handler := RateLimit(&limiterFake{allowed: 1, retry: 42 * time.Second})(next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, strconv.Itoa(42), rec.Header().Get("Retry-After"))

		body, err := io.ReadAll(rec.Result().Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success": false, "message": "Too many requests, please try again later"}`, string(body))
	})

	t.Run("keys by client ip", func(t *testing.T) {
		limiter := &limiterFake{allowed: 100}
		handler := RateLimit(limiter)(next)

		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.RemoteAddr = "203.0.113.7:51234"
		handler.ServeHTTP(httptest.NewRecorder(), r)

		require.Contains(t, limiter.seen, "203.0.113.7", "port should be stripped from the key")
	})
}
