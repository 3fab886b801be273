// Package auth holds the bearer-token and role middleware. It depends on a
// narrow verifier interface so the token implementation stays swappable.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/httputil"
	"skillaudit/pkg/requestcontext"
)

// TokenVerifier validates an access token and returns the identity it
// carries.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (userID id.UserID, role string, err error)
}

// RequireAuth rejects requests without a valid bearer token and populates
// the request context with the caller's identity.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			userID, role, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				logger.WarnContext(ctx, "rejected bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithUserRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only the listed roles past. It assumes RequireAuth
// already ran.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := requestcontext.UserRole(ctx)
			if _, ok := allowed[role]; !ok {
				logger.WarnContext(ctx, "role denied",
					"request_id", requestcontext.RequestID(ctx),
					"role", role,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
