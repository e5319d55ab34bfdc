package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/library/internal/config"
)

func newTestLimiter(t *testing.T, clock *time.Time) *LoginLimiter {
	t.Helper()
	l := NewLoginLimiter(config.Auth{
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  10 * time.Minute,
	})
	l.now = func() time.Time { return *clock }
	t.Cleanup(l.Stop)
	return l
}

func TestLoginLimiter_LocksAfterMaxFailures(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, &clock)

	assert.False(t, l.RecordFailure("1.2.3.4", "alice"))
	assert.False(t, l.RecordFailure("1.2.3.4", "alice"))
	assert.True(t, l.RecordFailure("1.2.3.4", "alice"))

	allowed, retry := l.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retry)

	// Other pairs are unaffected.
	allowed, _ = l.Allow("5.6.7.8", "alice")
	assert.True(t, allowed)
	allowed, _ = l.Allow("1.2.3.4", "bob")
	assert.True(t, allowed)

	clock = clock.Add(11 * time.Minute)
	allowed, _ = l.Allow("1.2.3.4", "alice")
	assert.True(t, allowed)
}

func TestLoginLimiter_WindowResets(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, &clock)

	l.RecordFailure("ip", "u")
	l.RecordFailure("ip", "u")
	clock = clock.Add(2 * time.Minute)

	assert.False(t, l.RecordFailure("ip", "u"), "failures outside the window start a new count")
}

func TestLoginLimiter_SuccessClears(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, &clock)

	l.RecordFailure("ip", "u")
	l.RecordFailure("ip", "u")
	l.RecordSuccess("ip", "u")

	assert.False(t, l.RecordFailure("ip", "u"))
}

func TestLoginLimiter_Sweep(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, &clock)

	l.RecordFailure("ip", "u")
	clock = clock.Add(time.Hour)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.attempts)
}
