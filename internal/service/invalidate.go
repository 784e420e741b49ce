package service

import (
	"context"
	"log/slog"

	"github.com/bytespace-io/bytespace/internal/adapter/natsbus"
	"github.com/bytespace-io/bytespace/internal/adapter/otel"
	"github.com/bytespace-io/bytespace/internal/port/cache"
)

// Invalidator drops cache tags after committed writes and broadcasts them
// to peer instances. Invalidation is fire-and-forget: the write has already
// committed, so failures are surfaced through logs and metrics, never to
// the request that triggered them.
type Invalidator struct {
	cache   cache.Cache
	bus     *natsbus.Bus
	metrics *otel.Metrics
}

// NewInvalidator creates an invalidator. bus and metrics may be nil.
func NewInvalidator(c cache.Cache, bus *natsbus.Bus, m *otel.Metrics) *Invalidator {
	return &Invalidator{cache: c, bus: bus, metrics: m}
}

// Invalidate drops each tag locally and publishes it to peers.
func (i *Invalidator) Invalidate(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		failed := false

		if err := i.cache.Delete(ctx, tag); err != nil {
			failed = true
			slog.Error("cache invalidation failed after committed write",
				"tag", tag, "error", err)
		}

		if i.bus != nil {
			if err := i.bus.PublishInvalidation(tag); err != nil {
				failed = true
				slog.Error("cache invalidation broadcast failed after committed write",
					"tag", tag, "error", err)
			}
		}

		if i.metrics != nil {
			i.metrics.Invalidations.Add(ctx, 1)
			if failed {
				i.metrics.InvalidationFails.Add(ctx, 1)
			}
		}
	}
}
