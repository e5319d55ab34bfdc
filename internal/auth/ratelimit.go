package auth

import (
	"sync"
	"time"

	"github.com/mrlokans/library/internal/config"
)

// LoginLimiter counts failed logins per client IP and username and locks
// the pair out once the limit is reached inside the window.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[loginKey]*loginAttempts
	now      func() time.Time

	maxAttempts     int
	window          time.Duration
	lockout         time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type loginKey struct {
	ip       string
	username string
}

type loginAttempts struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// NewLoginLimiter starts a limiter with a background sweep of stale
// entries. Call Stop when done.
func NewLoginLimiter(cfg config.Auth) *LoginLimiter {
	l := &LoginLimiter{
		attempts:        make(map[loginKey]*loginAttempts),
		now:             time.Now,
		maxAttempts:     cfg.MaxLoginAttempts,
		window:          cfg.RateLimitWindow,
		lockout:         cfg.LockoutDuration,
		cleanupInterval: 5 * time.Minute,
		stop:            make(chan struct{}),
	}
	if l.maxAttempts <= 0 {
		l.maxAttempts = 5
	}
	if l.window <= 0 {
		l.window = 15 * time.Minute
	}
	if l.lockout <= 0 {
		l.lockout = 30 * time.Minute
	}

	go l.sweepLoop()
	return l
}

func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow reports whether a login attempt may proceed and, if not, how long
// the lockout has left.
func (l *LoginLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[loginKey{ip, username}]
	if !ok {
		return true, 0
	}
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered a
// lockout.
func (l *LoginLimiter) RecordFailure(ip, username string) bool {
	now := l.now()
	key := loginKey{ip, username}

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.attempts[key]
	if !ok || now.Sub(record.windowStart) > l.window {
		record = &loginAttempts{windowStart: now}
		l.attempts[key] = record
	}

	record.failures++
	if record.failures >= l.maxAttempts {
		record.lockedUntil = now.Add(l.lockout)
		return true
	}
	return false
}

func (l *LoginLimiter) RecordSuccess(ip, username string) {
	l.mu.Lock()
	delete(l.attempts, loginKey{ip, username})
	l.mu.Unlock()
}

func (l *LoginLimiter) sweepLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, record := range l.attempts {
		if now.Sub(record.windowStart) > l.window && !now.Before(record.lockedUntil) {
			delete(l.attempts, key)
		}
	}
}
