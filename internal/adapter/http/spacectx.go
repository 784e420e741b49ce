package http

import (
	"context"
	"net/http"

	"github.com/bytespace-io/bytespace/internal/domain/space"
)

type spaceCtxKey struct{}

// SpaceCtx resolves the {spaceID} path parameter once per request and
// stores the space on the context. Every route under the spaces subtree
// then answers a bad or unknown id the same way, before any handler runs.
// Services still resolve through their cache, so the extra lookup is a hit.
func (h *Handlers) SpaceCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sp, err := h.spaces.Resolve(r.Context(), urlParam(r, "spaceID"))
		if err != nil {
			writeDomainError(w, err, "space not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), spaceCtxKey{}, sp)))
	})
}

// SpaceFromContext returns the space resolved by SpaceCtx, or nil outside
// the spaces subtree.
func SpaceFromContext(ctx context.Context) *space.Space {
	sp, _ := ctx.Value(spaceCtxKey{}).(*space.Space)
	return sp
}
