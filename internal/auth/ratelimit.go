package auth

import (
	"errors"
	"sync"
	"time"
)

// ErrClientLocked is returned when a client has accumulated too many failed
// authentication attempts and is locked out.
var ErrClientLocked = errors.New("client locked out")

const (
	delayFirstFailure  = 1 * time.Second
	delaySecondFailure = 2 * time.Second
	delayThirdFailure  = 5 * time.Second
	lockoutDuration    = 60 * time.Second

	// trackerRetention is how long idle attempt trackers are kept.
	trackerRetention = 5 * time.Minute

	// rateLimitCleanupInterval is how often idle trackers are swept.
	rateLimitCleanupInterval = 2 * time.Minute
)

type attemptTracker struct {
	count       int
	lastFailed  time.Time
	lockedUntil time.Time
}

func (at *attemptTracker) isLocked() bool {
	return time.Now().Before(at.lockedUntil)
}

// RateLimiter applies progressive delays to failed authentication attempts
// per client address: 1s, 2s, 5s, then a 60s lockout. A successful
// authentication clears the client's history.
type RateLimiter struct {
	mu       sync.RWMutex
	attempts map[string]*attemptTracker
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter with background cleanup.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]*attemptTracker),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// CheckLimit reports whether clientAddr may attempt authentication now.
// When locked, retryAfter is how long the client must wait.
func (rl *RateLimiter) CheckLimit(clientAddr string) (retryAfter time.Duration, err error) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	tracker, exists := rl.attempts[clientAddr]
	if !exists {
		return 0, nil
	}
	if tracker.isLocked() {
		return time.Until(tracker.lockedUntil), ErrClientLocked
	}
	if tracker.count >= 3 {
		return lockoutDuration, ErrClientLocked
	}
	return 0, nil
}

// RecordFailure records a failed attempt and returns the delay the caller
// should enforce before responding.
func (rl *RateLimiter) RecordFailure(clientAddr string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tracker, exists := rl.attempts[clientAddr]
	if !exists {
		tracker = &attemptTracker{}
		rl.attempts[clientAddr] = tracker
	}

	tracker.count++
	tracker.lastFailed = time.Now()

	switch tracker.count {
	case 1:
		return delayFirstFailure
	case 2:
		return delaySecondFailure
	case 3:
		return delayThirdFailure
	default:
		tracker.lockedUntil = time.Now().Add(lockoutDuration)
		return lockoutDuration
	}
}

// RecordSuccess clears all failure tracking for a client.
func (rl *RateLimiter) RecordSuccess(clientAddr string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, clientAddr)
}

// AttemptCount returns the current failure count for a client.
func (rl *RateLimiter) AttemptCount(clientAddr string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	tracker, exists := rl.attempts[clientAddr]
	if !exists {
		return 0
	}
	return tracker.count
}

// TrackedClients returns how many clients currently have attempt history.
func (rl *RateLimiter) TrackedClients() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.attempts)
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweepIdle()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) sweepIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-trackerRetention)
	for addr, tracker := range rl.attempts {
		if tracker.lastFailed.Before(cutoff) && !tracker.isLocked() {
			delete(rl.attempts, addr)
		}
	}
}

// RetryAfterSeconds formats a duration for the HTTP Retry-After header,
// rounded up to whole seconds.
func RetryAfterSeconds(d time.Duration) int {
	seconds := int(d / time.Second)
	if d%time.Second > 0 {
		seconds++
	}
	return seconds
}
