package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/port/objectstore"
)

// allowedUploadTypes are the content types accepted for space asset uploads.
var allowedUploadTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"video/mp4":       true,
	"application/pdf": true,
}

// PresignResult carries the signed upload URL and the final object key.
type PresignResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadService issues presigned upload URLs for space assets. Keys are
// namespaced under the space so one tenant can never sign into another's
// prefix.
type UploadService struct {
	objects objectstore.Store
	spaces  *SpaceService
	gate    *Gate
	expiry  time.Duration
}

// NewUploadService creates the upload service. objects may be nil when no
// bucket is configured.
func NewUploadService(objects objectstore.Store, spaces *SpaceService, gate *Gate, expiry time.Duration) *UploadService {
	return &UploadService{objects: objects, spaces: spaces, gate: gate, expiry: expiry}
}

// Presign authorizes the caller against the space and returns a one-time
// upload URL for the named file.
func (s *UploadService) Presign(ctx context.Context, p *principal.Principal, spaceID, filename, contentType string) (*PresignResult, error) {
	if filename == "" {
		return nil, domain.Validationf("filename is required")
	}
	if !allowedUploadTypes[contentType] {
		return nil, domain.Validationf("content type %q is not allowed", contentType)
	}

	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}
	if s.objects == nil {
		return nil, fmt.Errorf("uploads are not configured: %w", domain.ErrUpstream)
	}

	// Random prefix defeats overwrites of earlier uploads with the same name.
	base := strings.ReplaceAll(path.Base(filename), " ", "-")
	key := fmt.Sprintf("spaces/%s/uploads/%s-%s", spaceID, uuid.NewString()[:8], base)

	url, err := s.objects.PresignPut(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}
	return &PresignResult{URL: url, Key: key}, nil
}
