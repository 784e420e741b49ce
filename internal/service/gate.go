package service

import (
	"context"
	"fmt"

	"github.com/bytespace-io/bytespace/internal/adapter/otel"
	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/domain/space"
)

// Gate is the single permission check for space-scoped mutations. Every
// write path calls Authorize after the target space is resolved and before
// any store access; read paths never do.
type Gate struct {
	metrics *otel.Metrics
}

// NewGate creates a permission gate. metrics may be nil.
func NewGate(m *otel.Metrics) *Gate {
	return &Gate{metrics: m}
}

// Authorize decides whether p may mutate resources of sp.
//
// Spaces flagged public-write accept anonymous mutations; for all others
// the caller must be a super admin, a listed space admin, or a client
// holding that space's API key. Anonymous callers get ErrUnauthenticated
// so clients can distinguish "log in" from "not allowed".
func (g *Gate) Authorize(ctx context.Context, p *principal.Principal, sp *space.Space) error {
	if sp.PublicWriteAllowed {
		return nil
	}

	if p == nil {
		return fmt.Errorf("space %s: %w", sp.ID, domain.ErrUnauthenticated)
	}

	if !p.IsAdminOf(sp.ID, sp.AdminUsernames) {
		if g.metrics != nil {
			g.metrics.PermissionDenials.Add(ctx, 1)
		}
		return fmt.Errorf("user %q is not an admin of space %s: %w",
			p.Username, sp.ID, domain.ErrPermission)
	}

	if g.metrics != nil {
		g.metrics.Mutations.Add(ctx, 1)
	}
	return nil
}
