package service_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/bytespace-io/bytespace/internal/service"
)

// failingCache errors on every delete, standing in for a degraded tier.
type failingCache struct {
	*memCache
}

func (f *failingCache) Delete(_ context.Context, _ string) error {
	return errors.New("nats kv unavailable")
}

func TestInvalidateDropsEveryTag(t *testing.T) {
	c := newMemCache()
	_ = c.Set(context.Background(), "bytes:acme", []byte("x"), time.Minute)
	_ = c.Set(context.Background(), "collections:acme", []byte("y"), time.Minute)

	inv := service.NewInvalidator(c, nil, nil)
	inv.Invalidate(context.Background(), "bytes:acme", "collections:acme")

	tags := c.deletedTags()
	if !slices.Contains(tags, "bytes:acme") || !slices.Contains(tags, "collections:acme") {
		t.Fatalf("deleted tags = %v, want both", tags)
	}
	if _, ok, _ := c.Get(context.Background(), "bytes:acme"); ok {
		t.Fatal("tag still cached after invalidation")
	}
}

func TestInvalidateNeverPanicsOnFailure(t *testing.T) {
	inv := service.NewInvalidator(&failingCache{newMemCache()}, nil, nil)

	// The write already committed; a broken cache must not take the
	// request down with it.
	inv.Invalidate(context.Background(), "space:acme", "bytes:acme")
}
