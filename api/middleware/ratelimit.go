// ABOUTME: Rate limiting middleware for API endpoints
// ABOUTME: Per-client token buckets enforced while the rate_limit_enabled flag is on

package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"bookshelf-api/pkg/featureflags"
)

// visitorIdle is how long an unused client bucket is kept
const visitorIdle = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	proxies  TrustedProxies
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a limiter allowing perSecond sustained requests with
// the given burst per client. Clients are keyed by their connection address.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return NewRateLimiterBehindProxies(perSecond, burst, nil)
}

// NewRateLimiterBehindProxies creates a limiter that keys clients by the
// forwarded address when the connection comes from one of proxies
func NewRateLimiterBehindProxies(perSecond float64, burst int, proxies TrustedProxies) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		proxies:  proxies,
		done:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop ends the background cleanup
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.visitors {
				if time.Since(v.lastSeen) > visitorIdle {
					delete(rl.visitors, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Allow reports whether a request from key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiterFor(key).Allow()
}

// reserve returns zero if a request from key may proceed, otherwise how long
// the client should wait
func (rl *RateLimiter) reserve(key string) time.Duration {
	r := rl.limiterFor(key).Reserve()
	if !r.OK() {
		return time.Second
	}
	d := r.Delay()
	if d > 0 {
		r.Cancel()
	}
	return d
}

// TrustedProxies lists the networks whose forwarding headers are believed
type TrustedProxies []netip.Prefix

// ParseTrustedProxies parses CIDRs or bare IPs
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	var proxies TrustedProxies
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			proxies = append(proxies, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", entry)
		}
		proxies = append(proxies, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return proxies, nil
}

func (tp TrustedProxies) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range tp {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address a request is keyed by. Forwarding headers are
// read only when the connection comes from a trusted proxy; X-Forwarded-For
// is walked right to left past trusted hops.
func (tp TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !tp.contains(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" || tp.contains(hop) {
				continue
			}
			return hop
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// extractIP gets the client IP from the connection, ignoring forwarding headers
func extractIP(r *http.Request) string {
	return remoteHost(r)
}

// RateLimitMiddleware rejects clients over their budget with 429.
// It is a pass-through unless the rate_limit_enabled flag is on for the request.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !featureflags.IsEnabled(r.Context(), featureflags.RateLimitEnabled) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", formatLimit(limiter.limit))
			w.Header().Set("X-RateLimit-Burst", fmt.Sprintf("%d", limiter.burst))

			if wait := limiter.reserve(limiter.proxies.ClientIP(r)); wait > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(wait.Seconds()))))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests","message":"Rate limit exceeded. Please try again later."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func formatLimit(l rate.Limit) string {
	return fmt.Sprintf("%g", float64(l))
}
