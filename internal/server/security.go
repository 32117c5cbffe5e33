package server

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/waterdeep-conspiracy/internal/config"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleExpiry    = 10 * time.Minute
)

// window is a fixed counting window that restarts once span has passed.
type window struct {
	start time.Time
	count int
}

func (w *window) hit(now time.Time, span time.Duration) int {
	if now.Sub(w.start) >= span {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

// ConnectionLimiter caps how fast one IP may open websockets. An IP over
// either cap is refused until its ban runs out.
type ConnectionLimiter struct {
	perSecond int
	perMinute int
	ban       time.Duration
	now       func() time.Time

	mu    sync.Mutex
	peers map[string]*peer
}

type peer struct {
	second      window
	minute      window
	lastSeen    time.Time
	bannedUntil time.Time
}

// NewConnectionLimiter applies the security.rate_limit settings.
// Run must be started to forget idle IPs.
func NewConnectionLimiter(cfg config.RateLimitConfig) *ConnectionLimiter {
	return &ConnectionLimiter{
		perSecond: cfg.MaxPerSecond,
		perMinute: cfg.MaxPerMinute,
		ban:       cfg.BanDurationTime(),
		now:       time.Now,
		peers:     make(map[string]*peer),
	}
}

// Allow records a connection attempt from ip and reports whether to accept it.
func (l *ConnectionLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	p, ok := l.peers[ip]
	if !ok {
		p = &peer{}
		l.peers[ip] = p
	}
	p.lastSeen = now

	if now.Before(p.bannedUntil) {
		return false
	}

	overSecond := p.second.hit(now, time.Second) > l.perSecond
	overMinute := p.minute.hit(now, time.Minute) > l.perMinute
	if overSecond || overMinute {
		p.bannedUntil = now.Add(l.ban)
		log.Warn().Str("ip", ip).Dur("ban", l.ban).Msg("ip banned for connecting too fast")
		return false
	}
	return true
}

// Run forgets idle IPs until ctx is done.
func (l *ConnectionLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(l.now())
		}
	}
}

func (l *ConnectionLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, p := range l.peers {
		if now.Sub(p.lastSeen) > limiterIdleExpiry && !now.Before(p.bannedUntil) {
			delete(l.peers, ip)
		}
	}
}

// Verdict is what the read pump does with an inbound message.
type Verdict int

const (
	VerdictAllow    Verdict = iota
	VerdictThrottle         // reject this message, keep the connection
	VerdictDrop             // too many strikes, close the connection
)

// MessageLimiter caps inbound messages per connection. Every message over the
// per-second cap is a strike, and a connection that collects more than
// maxStrikes is dropped.
type MessageLimiter struct {
	perSecond  int
	maxStrikes int
	now        func() time.Time

	mu      sync.Mutex
	clients map[string]*sender
}

type sender struct {
	second  window
	strikes int
}

// NewMessageLimiter applies the security.message_limit settings.
func NewMessageLimiter(cfg config.MessageLimitConfig) *MessageLimiter {
	return &MessageLimiter{
		perSecond:  cfg.MaxPerSecond,
		maxStrikes: cfg.MaxStrikes,
		now:        time.Now,
		clients:    make(map[string]*sender),
	}
}

// Check counts one message from clientID.
func (l *MessageLimiter) Check(clientID string) Verdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.clients[clientID]
	if !ok {
		s = &sender{}
		l.clients[clientID] = s
	}

	if s.second.hit(l.now(), time.Second) <= l.perSecond {
		return VerdictAllow
	}
	s.strikes++
	if s.strikes > l.maxStrikes {
		return VerdictDrop
	}
	return VerdictThrottle
}

// Forget drops a disconnected client's counters.
func (l *MessageLimiter) Forget(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.clients, clientID)
}

// OriginChecker restricts which web origins may open a websocket. Origins
// compare by scheme and host, case-insensitively.
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker allows the listed origins. "*" allows any.
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			continue
		}
		if key, ok := originKey(origin); ok {
			oc.allowed[key] = true
		} else {
			log.Warn().Str("origin", origin).Msg("ignoring malformed allowed origin")
		}
	}
	return oc
}

// Check is the websocket upgrader's CheckOrigin. Native clients send no
// Origin header and are allowed.
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if oc.allowAll || origin == "" {
		return true
	}
	key, ok := originKey(origin)
	return ok && oc.allowed[key]
}

func originKey(origin string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}

// GetClientIP returns the caller's address. Proxy headers win when they
// carry a valid IP.
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
