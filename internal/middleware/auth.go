package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sitewise-backend/internal/identity"
	"sitewise-backend/pkg/api"
	apperrors "sitewise-backend/pkg/errors"
)

type identityContextKey string

const identityKey identityContextKey = "identity"

// Authenticate resolves the caller through the identity cache and stores the
// resolved identity in the request context. The auth provider is consulted on
// every request; the profile-store round trip is skipped on a cache hit.
func Authenticate(ids *identity.Cache, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				api.Error(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			ident, wasCached, err := ids.Resolve(r.Context(), token)
			if err != nil {
				if apperrors.IsNotFound(err) {
					// Authenticated but unprovisioned: a real account with no
					// profile row yet.
					api.Error(w, http.StatusBadRequest, "Profile not found")
					return
				}
				logger.Debug("Identity resolution failed",
					zap.Error(err),
					zap.String("request_id", GetRequestIDFromRequest(r)),
				)
				api.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if !wasCached {
				logger.Debug("Resolved identity from profile store",
					zap.String("subject_id", ident.SubjectID),
					zap.String("tenant_id", ident.TenantID),
				)
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the resolved identity placed by Authenticate.
func IdentityFromContext(ctx context.Context) (*identity.CachedIdentity, bool) {
	ident, ok := ctx.Value(identityKey).(*identity.CachedIdentity)
	return ident, ok
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		header = r.Header.Get("authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
