// Package requestmeta stamps every request with a correlation id, a pinned
// request time, and client metadata. It runs first in the chain so every
// later layer sees the same values.
package requestmeta

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillaudit/pkg/requestcontext"
)

type (
	clientIPKey  struct{}
	userAgentKey struct{}
)

// Middleware assigns a request id (honoring an upstream X-Request-ID), pins
// the request time, and captures client IP and User-Agent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = context.WithValue(ctx, clientIPKey{}, clientIP(r))
		ctx = context.WithValue(ctx, userAgentKey{}, r.Header.Get("User-Agent"))

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the client address captured by the middleware.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey{}).(string); ok {
		return v
	}
	return ""
}

// UserAgent returns the User-Agent header captured by the middleware.
func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}

// clientIP resolves the original client address behind proxies.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
