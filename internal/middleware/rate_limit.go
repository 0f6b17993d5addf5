package middleware

import (
	"context"
	"net"

	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/router"
	"github.com/questx-lab/habit/pkg/xcontext"
	"golang.org/x/time/rate"
)

// RateLimiter limits the request rate of each user, or of each address for anonymous requests.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *xsync.MapOf[string, *rate.Limiter]
}

func NewRateLimiter(limit float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(limit),
		burst:    burst,
		limiters: xsync.NewMapOf[*rate.Limiter](),
	}
}

func (l *RateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		key := xcontext.RequestUserID(ctx)
		if key == "" {
			key = remoteIP(ctx)
		}

		limiter, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
		if !limiter.Allow() {
			return ctx, errorx.New(errorx.TooManyRequests, "Too many requests")
		}

		return ctx, nil
	}
}

func remoteIP(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}
