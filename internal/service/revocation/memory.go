package revocation

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// MemoryRegistry is a process local registry guarded by a mutex.
// Entries expire after ttl (the refresh token lifetime) and a background
// sweep drops them, so the map stays bounded.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[int64]time.Time
	ttl     time.Duration
	stop    chan struct{}
	now     func() time.Time
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	r := &MemoryRegistry{
		entries: make(map[int64]time.Time),
		ttl:     ttl,
		stop:    make(chan struct{}),
		now:     time.Now,
	}

	go r.sweep()

	return r
}

func (r *MemoryRegistry) Revoke(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Marks match the second precision of token issue times
	r.entries[userID] = r.now().Truncate(time.Second)
	return nil
}

func (r *MemoryRegistry) RevokedSince(_ context.Context, userID int64) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	since, ok := r.entries[userID]
	if !ok || r.now().Sub(since) > r.ttl {
		return time.Time{}, false, nil
	}

	return since, true, nil
}

// Close stops the background sweep
func (r *MemoryRegistry) Close() {
	close(r.stop)
}

func (r *MemoryRegistry) sweep() {
	ticker := time.NewTicker(defaultSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			cutoff := r.now().Add(-r.ttl)
			for userID, since := range r.entries {
				if since.Before(cutoff) {
					delete(r.entries, userID)
				}
			}
			r.mu.Unlock()
		}
	}
}
