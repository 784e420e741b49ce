package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/service"
)

type principalCtxKey struct{}

// Auth returns middleware that resolves credentials into a Principal on the
// request context. A request with no credentials passes through anonymously;
// permission checks happen downstream where the operation is known. A request
// that PRESENTS credentials which fail to validate is rejected with 401, so a
// caller can never silently fall back to anonymous access.
//
// X-API-Key is checked before Authorization: Bearer. When both are present
// the API key wins.
func Auth(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rawKey := r.Header.Get("X-API-Key"); rawKey != "" {
				spaceID, err := authSvc.ValidateAPIKey(r.Context(), rawKey)
				if err != nil {
					http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
					return
				}
				p := &principal.Principal{APIKeySpaceID: spaceID}
				ctx := context.WithValue(r.Context(), principalCtxKey{}, p)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				http.Error(w, `{"message":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := authSvc.ValidateAccessToken(token)
			if err != nil {
				http.Error(w, `{"message":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			p := &principal.Principal{
				UserID:     claims.UserID,
				Username:   claims.Username,
				SuperAdmin: claims.SuperAdmin,
			}
			ctx := context.WithValue(r.Context(), principalCtxKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated principal, or nil for
// anonymous requests.
func PrincipalFromContext(ctx context.Context) *principal.Principal {
	p, _ := ctx.Value(principalCtxKey{}).(*principal.Principal)
	return p
}

// WithPrincipal injects a principal into the context. Exported for tests
// that exercise handlers without the full auth middleware.
func WithPrincipal(ctx context.Context, p *principal.Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}
