package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/i-christian/fileDrop/internal/utils"
	"golang.org/x/time/rate"
)

const (
	clientIdleTimeout = 3 * time.Minute
	sweepInterval     = time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter hands out one token bucket per client IP.
type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	rps       rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

func (l *clientLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	return c.limiter.Allow()
}

// sweep forgets clients that have not been seen for clientIdleTimeout.
func (l *clientLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(l.now())
}

func (l *clientLimiter) sweepLocked(now time.Time) {
	l.lastSweep = now
	cutoff := now.Add(-clientIdleTimeout)
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// RateLimit limits each client IP to rps requests per second with the given
// burst. Idle clients are forgotten as requests arrive. When enabled is false the middleware passes every request through.
// It relies on middleware.RealIP having already set r.RemoteAddr.
func RateLimit(rps float64, burst int, enabled bool) func(http.Handler) http.Handler {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := newClientLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.allow(ip) {
				w.Header().Set("Retry-After", "1")
				utils.RateLimitExcededResponse(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
