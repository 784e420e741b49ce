// Package cache defines the port interface for the projection cache.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized projections under tag-style keys. Get reports
// a miss with ok=false rather than an error; errors mean the backing
// store itself failed.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
