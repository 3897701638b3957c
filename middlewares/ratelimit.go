// SPDX-License-Identifier: GPL-3.0-only

package middlewares

import (
	"aventrada-server/commons"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// limiterPair couples a token bucket with a throttle for its own log lines.
type limiterPair struct {
	limiter   *rate.Limiter
	sometimes *rate.Sometimes
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*limiterPair
	lastGC   time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*limiterPair),
		lastGC:   time.Now(),
	}
}

// NewIPRateLimiterFromEnv allows RATE_LIMIT_PER_MINUTE requests per minute
// per IP, with the same burst.
func NewIPRateLimiterFromEnv() *IPRateLimiter {
	perMinute := commons.GetEnvInt("RATE_LIMIT_PER_MINUTE", 30)
	if perMinute <= 0 {
		return NewIPRateLimiter(rate.Inf, 0)
	}
	return NewIPRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func (l *IPRateLimiter) get(ip string) *limiterPair {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastGC) > 10*time.Minute {
		maps.DeleteFunc(l.limiters, func(_ string, pair *limiterPair) bool {
			return int(pair.limiter.Tokens()) >= pair.limiter.Burst()
		})
		l.lastGC = time.Now()
	}

	pair, ok := l.limiters[ip]
	if !ok {
		pair = &limiterPair{
			limiter:   rate.NewLimiter(l.limit, l.burst),
			sometimes: &rate.Sometimes{First: 1, Interval: time.Minute},
		}
		l.limiters[ip] = pair
	}
	return pair
}

func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip).limiter.Allow()
}

func (l *IPRateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		pair := l.get(ip)
		if !pair.limiter.Allow() {
			pair.sometimes.Do(func() {
				c.Logger().Warnf("Rate limit exceeded for %s on %s", ip, c.Path())
			})
			return &echo.HTTPError{
				Code:    http.StatusTooManyRequests,
				Message: "Too many requests, please try again later",
			}
		}
		return next(c)
	}
}
