package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter applies a token bucket per client IP.
type limiter struct {
	rate    rate.Limit
	burst   int
	trusted *proxyMatcher

	// onReject is called for every refused request.
	onReject func(r *http.Request, ip string)

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

// visitor is the bucket of one client.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiter(r rate.Limit, burst int, trusted *proxyMatcher) *limiter {
	return &limiter{
		rate:     r,
		burst:    burst,
		trusted:  trusted,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// allow reports whether ip may make another request now.
func (l *limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Middleware refuses requests over the limit with 429. A nil limiter or a
// zero rate lets everything through.
func (l *limiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, l.trusted)
		if ip == "" {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if !l.allow(ip) {
			if l.onReject != nil {
				l.onReject(r, ip)
			}
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanup forgets visitors idle for longer than maxIdle.
func (l *limiter) cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(l.visitors, ip)
		}
	}
}

// len returns the number of tracked visitors.
func (l *limiter) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// run sweeps idle visitors every interval until ctx is done.
func (l *limiter) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(3 * interval)
		}
	}
}
