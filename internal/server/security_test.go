package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/waterdeep-conspiracy/internal/config"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newConnLimiter(perSecond, perMinute, banSeconds int) (*ConnectionLimiter, *fakeClock) {
	clock := newFakeClock()
	l := NewConnectionLimiter(config.RateLimitConfig{
		MaxPerSecond: perSecond,
		MaxPerMinute: perMinute,
		BanDuration:  banSeconds,
	})
	l.now = clock.Now
	return l, clock
}

func TestConnectionLimiter_PerSecond(t *testing.T) {
	t.Parallel()

	l, clock := newConnLimiter(5, 100, 60)
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, l.Allow(ip), "connection %d", i+1)
	}
	assert.False(t, l.Allow(ip), "6th connection in the same second")
	assert.True(t, l.Allow("10.9.9.9"), "other IPs are unaffected")

	// The ban outlasts the one-second window.
	clock.Advance(2 * time.Second)
	assert.False(t, l.Allow(ip))
}

func TestConnectionLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	l, clock := newConnLimiter(2, 100, 30)
	ip := "192.168.1.1"

	assert.True(t, l.Allow(ip))
	assert.True(t, l.Allow(ip))
	assert.False(t, l.Allow(ip))

	clock.Advance(29 * time.Second)
	assert.False(t, l.Allow(ip))

	clock.Advance(time.Second)
	assert.True(t, l.Allow(ip))
}

func TestConnectionLimiter_PerMinute(t *testing.T) {
	t.Parallel()

	l, clock := newConnLimiter(100, 5, 1)
	ip := "10.0.0.1"

	for range 5 {
		assert.True(t, l.Allow(ip))
		clock.Advance(5 * time.Second)
	}
	assert.False(t, l.Allow(ip))

	clock.Advance(time.Minute)
	assert.True(t, l.Allow(ip))
}

func TestConnectionLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	l, _ := newConnLimiter(20, 200, 60)
	var allowed atomic.Int32
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("concurrent-test") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), allowed.Load())
}

func TestConnectionLimiter_SweepsIdlePeers(t *testing.T) {
	t.Parallel()

	l, clock := newConnLimiter(1, 100, 3600)
	l.Allow("1.1.1.1")
	l.Allow("2.2.2.2")
	l.Allow("2.2.2.2") // banned for an hour

	l.sweep(clock.Now())
	assert.Len(t, l.peers, 2)

	clock.Advance(limiterIdleExpiry + time.Minute)
	l.sweep(clock.Now())
	assert.Len(t, l.peers, 1, "banned peers are kept until the ban ends")
	assert.Contains(t, l.peers, "2.2.2.2")

	clock.Advance(time.Hour)
	l.sweep(clock.Now())
	assert.Empty(t, l.peers)
}

func newMsgLimiter(perSecond, maxStrikes int) (*MessageLimiter, *fakeClock) {
	clock := newFakeClock()
	l := NewMessageLimiter(config.MessageLimitConfig{MaxPerSecond: perSecond, MaxStrikes: maxStrikes})
	l.now = clock.Now
	return l, clock
}

func TestMessageLimiter_Verdicts(t *testing.T) {
	t.Parallel()

	l, clock := newMsgLimiter(3, 2)
	id := "client1"

	for i := range 3 {
		assert.Equal(t, VerdictAllow, l.Check(id), "message %d", i+1)
	}
	assert.Equal(t, VerdictThrottle, l.Check(id), "first strike")
	assert.Equal(t, VerdictAllow, l.Check("client2"))

	// Strikes carry over into the next second.
	clock.Advance(time.Second)
	for range 3 {
		assert.Equal(t, VerdictAllow, l.Check(id))
	}
	assert.Equal(t, VerdictThrottle, l.Check(id), "second strike")
	assert.Equal(t, VerdictDrop, l.Check(id), "third strike")
}

func TestMessageLimiter_Forget(t *testing.T) {
	t.Parallel()

	l, _ := newMsgLimiter(1, 1)
	id := "temp-client"

	l.Check(id)
	l.Check(id)
	assert.Equal(t, VerdictDrop, l.Check(id))

	l.Forget(id)
	assert.Equal(t, VerdictAllow, l.Check(id))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expectedIP string
	}{
		{"direct connection", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"X-Forwarded-For single IP", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"X-Forwarded-For chain", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2, 10.0.0.3"}, "203.0.113.1"},
		{"X-Real-IP", "10.0.0.1:12345", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
		{
			"X-Forwarded-For wins over X-Real-IP", "10.0.0.1:12345",
			map[string]string{"X-Forwarded-For": "203.0.113.3", "X-Real-IP": "203.0.113.4"},
			"203.0.113.3",
		},
		{
			"garbage forwarded header falls through", "10.0.0.1:12345",
			map[string]string{"X-Forwarded-For": "not-an-ip", "X-Real-IP": "203.0.113.5"},
			"203.0.113.5",
		},
		{"garbage headers use the socket", "10.0.0.1:12345", map[string]string{"X-Real-IP": "unknown"}, "10.0.0.1"},
		{"IPv6 remote address", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"remote address without port", "pipe", nil, "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.expectedIP, GetClientIP(req))
		})
	}
}

func TestOriginChecker_AllowAll(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"*"})
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")

	assert.True(t, oc.Check(req))
}

func TestOriginChecker_SpecificOrigins(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://braedenpope.dev", "http://localhost:3000/", "not a url"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://braedenpope.dev", true},
		{"HTTPS://BraedenPope.dev", true},
		{"http://localhost:3000", true},
		{"https://evil.com", false},
		{"http://braedenpope.dev", false}, // different scheme
		{"http://localhost:3001", false},  // different port
		{"not a url", false},
		{"null", false},
		{"", true}, // native clients send no Origin
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.allowed, oc.Check(req), "Origin: %s", tt.origin)
	}
}
