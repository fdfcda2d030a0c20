// Package ratelimit implements request throttling for the HTTP surface.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may proceed.
// RetryAfter reports how long until the key's window resets.
type Limiter interface {
	Allow(key string) bool
	RetryAfter(key string) time.Duration
}

const defaultSweepEvery = time.Minute

type windowEntry struct {
	count      int
	windowFrom time.Time
}

// FixedWindow counts requests per key in fixed windows of Window length.
// The first request in a window starts it; once Limit requests land in
// the same window the rest are rejected until it expires.
type FixedWindow struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*windowEntry

	now  func() time.Time
	stop chan struct{}
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	fw := &FixedWindow{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go fw.sweepLoop()

	return fw
}

func (fw *FixedWindow) Allow(key string) bool {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	entry, ok := fw.entries[key]
	if !ok || now.Sub(entry.windowFrom) >= fw.window {
		fw.entries[key] = &windowEntry{count: 1, windowFrom: now}
		return true
	}

	entry.count++
	return entry.count <= fw.limit
}

func (fw *FixedWindow) RetryAfter(key string) time.Duration {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	entry, ok := fw.entries[key]
	if !ok {
		return 0
	}

	left := fw.window - now.Sub(entry.windowFrom)
	if left < 0 {
		return 0
	}

	return left
}

// Close stops the background sweeper
func (fw *FixedWindow) Close() {
	close(fw.stop)
}

func (fw *FixedWindow) sweepLoop() {
	ticker := time.NewTicker(defaultSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-fw.stop:
			return
		case <-ticker.C:
			fw.sweep()
		}
	}
}

func (fw *FixedWindow) sweep() {
	now := fw.now()

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for key, entry := range fw.entries {
		if now.Sub(entry.windowFrom) >= fw.window {
			delete(fw.entries, key)
		}
	}
}
