// Package natsbus broadcasts cache invalidation tags between instances
// over core NATS pub/sub.
package natsbus

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const invalidationSubject = "bytespace.cache.invalidate"

// event is the wire payload for one invalidated tag.
type event struct {
	Tag    string `json:"tag"`
	Origin string `json:"origin"`
}

// Bus publishes and receives invalidation events. Each instance carries a
// random origin ID so it can skip its own broadcasts: the publisher has
// already dropped the key locally by the time it publishes.
type Bus struct {
	nc     *nats.Conn
	origin string
}

// New creates a bus over an established NATS connection.
func New(nc *nats.Conn) *Bus {
	return &Bus{nc: nc, origin: uuid.NewString()}
}

// PublishInvalidation broadcasts a tag to all peers. Fire-and-forget:
// the caller decides how a publish failure is reported.
func (b *Bus) PublishInvalidation(tag string) error {
	payload, err := json.Marshal(event{Tag: tag, Origin: b.origin})
	if err != nil {
		return fmt.Errorf("marshal invalidation: %w", err)
	}
	if err := b.nc.Publish(invalidationSubject, payload); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// SubscribeInvalidations delivers foreign invalidation tags to handler.
// Returns an unsubscribe function.
func (b *Bus) SubscribeInvalidations(handler func(tag string)) (func(), error) {
	sub, err := b.nc.Subscribe(invalidationSubject, func(msg *nats.Msg) {
		var ev event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		if ev.Origin == b.origin || ev.Tag == "" {
			return
		}
		handler(ev.Tag)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe invalidations: %w", err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
