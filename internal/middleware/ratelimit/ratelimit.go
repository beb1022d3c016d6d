package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/wudi/edgegate/internal/errors"
	"github.com/wudi/edgegate/internal/middleware"
)

// Limiter applies a token-bucket rate limit to requests under a path prefix.
type Limiter struct {
	limiter    *rate.Limiter
	pathPrefix string
	allowed    atomic.Int64
	rejected   atomic.Int64
}

// Config holds limiter settings.
type Config struct {
	Rate       int           // requests per period
	Burst      int           // bucket size; defaults to Rate
	Period     time.Duration // defaults to 1s
	PathPrefix string        // only matching paths are limited; "" limits all
}

// New creates a Limiter from config.
func New(cfg Config) *Limiter {
	burst := cfg.Burst
	if burst == 0 {
		burst = cfg.Rate
	}
	period := cfg.Period
	if period == 0 {
		period = time.Second
	}
	rps := float64(cfg.Rate) / period.Seconds()
	return &Limiter{
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		pathPrefix: cfg.PathPrefix,
	}
}

// Middleware returns a middleware that rejects requests over the limit.
func (l *Limiter) Middleware() middleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.pathPrefix != "" && !strings.HasPrefix(r.URL.Path, l.pathPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			if !l.limiter.Allow() {
				l.rejected.Add(1)
				w.Header().Set("Retry-After", strconv.Itoa(1))
				errors.ErrTooManyRequests.WriteJSON(w)
				return
			}
			l.allowed.Add(1)
			next.ServeHTTP(w, r)
		})
	}
}

// Stats returns counters for this limiter.
func (l *Limiter) Stats() map[string]int64 {
	return map[string]int64{
		"allowed":  l.allowed.Load(),
		"rejected": l.rejected.Load(),
	}
}
