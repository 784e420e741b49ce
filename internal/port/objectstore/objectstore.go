// Package objectstore defines the port interface for object storage.
package objectstore

import (
	"context"
	"time"
)

// Store is the port interface for S3-compatible object storage.
// The core only needs presigned upload URLs and raw object reads.
type Store interface {
	// PresignPut returns a URL a client can PUT an object to.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// GetObject reads an object's full contents.
	GetObject(ctx context.Context, key string) ([]byte, error)
}
