package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// RateLimit allows limit requests per window per client IP, with bursts up to
// limit. Requests over budget are passed to onLimit, or answered with 429 when
// onLimit is nil. Only non-GET requests count.
func RateLimit(limit int, per time.Duration, onLimit http.Handler) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if onLimit == nil {
		onLimit = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	every := rate.Every(per / time.Duration(limit))
	retryAfter := strconv.Itoa(max(1, int((per / time.Duration(limit)).Seconds())))

	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	lastSweep := time.Now()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIPForRateLimit(r)
			now := time.Now()

			mu.Lock()
			if now.Sub(lastSweep) > per {
				for key, b := range buckets {
					if now.Sub(b.seen) > per {
						delete(buckets, key)
					}
				}
				lastSweep = now
			}
			b, ok := buckets[ip]
			if !ok {
				b = &bucket{limiter: rate.NewLimiter(every, limit)}
				buckets[ip] = b
			}
			b.seen = now
			allowed := b.limiter.AllowN(now, 1)
			mu.Unlock()

			if !allowed {
				w.Header().Set("Retry-After", retryAfter)
				onLimit.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
