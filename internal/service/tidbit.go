package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytespace-io/bytespace/internal/adapter/otel"
	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
	"github.com/bytespace-io/bytespace/internal/port/cache"
	"github.com/bytespace-io/bytespace/internal/port/database"
	"github.com/bytespace-io/bytespace/internal/port/llm"
	"github.com/bytespace-io/bytespace/internal/port/notifier"
)

const byteDraftPrompt = "byte-draft"

// TidbitService executes byte and byte-collection operations. Every write
// follows the same shape: validate the request, resolve the space, pass
// the permission gate, mutate, invalidate tags, then re-read the projected
// response.
type TidbitService struct {
	store    database.Store
	spaces   *SpaceService
	gate     *Gate
	cache    cache.Cache
	inv      *Invalidator
	llm      llm.Client
	notifier notifier.Notifier
	metrics  *otel.Metrics
	ttl      time.Duration
}

// NewTidbitService creates the byte/collection service. llm, notifier and
// metrics may be nil; the operations needing them then degrade or error.
func NewTidbitService(store database.Store, spaces *SpaceService, gate *Gate,
	c cache.Cache, inv *Invalidator, llmClient llm.Client, n notifier.Notifier,
	m *otel.Metrics, ttl time.Duration) *TidbitService {
	return &TidbitService{
		store: store, spaces: spaces, gate: gate, cache: c, inv: inv,
		llm: llmClient, notifier: n, metrics: m, ttl: ttl,
	}
}

func bytesTag(spaceID string) string          { return "bytes:" + spaceID }
func byteTag(spaceID, id string) string       { return "byte:" + spaceID + ":" + id }
func collectionsTag(spaceID string) string    { return "collections:" + spaceID }
func collectionTag(spaceID, id string) string { return "collection:" + spaceID + ":" + id }

// --- Bytes ---

// UpsertByte creates or replaces a byte. Replaying the same request is
// idempotent: the second write leaves the row identical.
func (s *TidbitService) UpsertByte(ctx context.Context, p *principal.Principal, spaceID string, req tidbit.UpsertByteRequest) (*tidbit.Byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	b, err := s.store.UpsertByte(ctx, spaceID, req, actorName(p))
	if err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, bytesTag(spaceID), byteTag(spaceID, b.ID))
	if b.Status == tidbit.StatusLive {
		s.notify(ctx, spaceID, "Byte published", fmt.Sprintf("%q is live in space %s", b.Name, spaceID))
	}
	return b, nil
}

// GenerateByte drafts a byte from raw content through the LLM proxy and
// stores it as a draft attributed to the caller.
func (s *TidbitService) GenerateByte(ctx context.Context, p *principal.Principal, spaceID string, req tidbit.GenerateByteRequest) (*tidbit.Byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, fmt.Errorf("content generation is not configured: %w", domain.ErrUpstream)
	}

	input, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generation input: %w", err)
	}

	start := time.Now()
	result, err := s.llm.Invoke(ctx, byteDraftPrompt, input)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.LLMGenerations.Add(ctx, 1)
		s.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	}

	var draft tidbit.UpsertByteRequest
	if err := json.Unmarshal([]byte(result.Response), &draft); err != nil {
		return nil, fmt.Errorf("llm returned malformed draft (invocation %s): %w: %w",
			result.InvocationID, domain.ErrUpstream, err)
	}
	draft.ID = ""
	draft.Status = tidbit.StatusDraft
	if draft.Name == "" {
		draft.Name = req.Topic
	}
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("llm returned invalid draft (invocation %s): %w",
			result.InvocationID, domain.ErrUpstream)
	}

	b, err := s.store.UpsertByte(ctx, spaceID, draft, actorName(p))
	if err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, bytesTag(spaceID))
	return b, nil
}

// GetByte returns one byte.
func (s *TidbitService) GetByte(ctx context.Context, spaceID, id string) (*tidbit.Byte, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.store.GetByte(ctx, spaceID, id)
}

// ListBytes returns the space's bytes. The default projection (live rows
// only) is cached under the space's bytes tag.
func (s *TidbitService) ListBytes(ctx context.Context, spaceID string, includeArchived bool) ([]tidbit.Byte, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}

	if !includeArchived {
		if data, ok, _ := s.cache.Get(ctx, bytesTag(spaceID)); ok {
			var bytes []tidbit.Byte
			if err := json.Unmarshal(data, &bytes); err == nil {
				return bytes, nil
			}
		}
	}

	bytes, err := s.store.ListBytes(ctx, spaceID, includeArchived)
	if err != nil {
		return nil, err
	}

	if !includeArchived {
		if data, err := json.Marshal(bytes); err == nil {
			_ = s.cache.Set(ctx, bytesTag(spaceID), data, s.ttl)
		}
	}
	return bytes, nil
}

// ArchiveByte soft-deletes a byte and its collection memberships.
func (s *TidbitService) ArchiveByte(ctx context.Context, p *principal.Principal, spaceID, id string) error {
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return err
	}

	if err := s.store.ArchiveByte(ctx, spaceID, id, actorName(p)); err != nil {
		return err
	}

	// Membership rows changed too, so every collection projection of the
	// space is stale, not just the byte listings.
	s.inv.Invalidate(ctx, bytesTag(spaceID), byteTag(spaceID, id), collectionsTag(spaceID))
	return nil
}

// --- Collections ---

// CreateCollection creates an empty collection.
func (s *TidbitService) CreateCollection(ctx context.Context, p *principal.Principal, spaceID string, req tidbit.CreateCollectionRequest) (*tidbit.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	c, err := s.store.CreateCollection(ctx, spaceID, req)
	if err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, collectionsTag(spaceID))
	return s.projectCollection(ctx, spaceID, c.ID)
}

// GetCollection returns the projected collection with its items.
func (s *TidbitService) GetCollection(ctx context.Context, spaceID, id string) (*tidbit.Summary, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}

	if data, ok, _ := s.cache.Get(ctx, collectionTag(spaceID, id)); ok {
		var sum tidbit.Summary
		if err := json.Unmarshal(data, &sum); err == nil {
			return &sum, nil
		}
	}

	sum, err := s.projectCollection(ctx, spaceID, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(sum); err == nil {
		_ = s.cache.Set(ctx, collectionTag(spaceID, id), data, s.ttl)
	}
	return sum, nil
}

// ListCollections returns the space's collections ordered by priority.
func (s *TidbitService) ListCollections(ctx context.Context, spaceID string, includeArchived bool) ([]tidbit.Collection, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}

	if !includeArchived {
		if data, ok, _ := s.cache.Get(ctx, collectionsTag(spaceID)); ok {
			var cols []tidbit.Collection
			if err := json.Unmarshal(data, &cols); err == nil {
				return cols, nil
			}
		}
	}

	cols, err := s.store.ListCollections(ctx, spaceID, includeArchived)
	if err != nil {
		return nil, err
	}

	if !includeArchived {
		if data, err := json.Marshal(cols); err == nil {
			_ = s.cache.Set(ctx, collectionsTag(spaceID), data, s.ttl)
		}
	}
	return cols, nil
}

// UpdateCollection applies partial updates.
func (s *TidbitService) UpdateCollection(ctx context.Context, p *principal.Principal, spaceID, id string, req tidbit.UpdateCollectionRequest) (*tidbit.Summary, error) {
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}
	if req.Name != nil && *req.Name == "" {
		return nil, domain.Validationf("collection name must not be empty")
	}

	if _, err := s.store.UpdateCollection(ctx, spaceID, id, req); err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, collectionsTag(spaceID), collectionTag(spaceID, id))
	return s.projectCollection(ctx, spaceID, id)
}

// ArchiveCollection soft-deletes a collection and its membership rows.
func (s *TidbitService) ArchiveCollection(ctx context.Context, p *principal.Principal, spaceID, id string) error {
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return err
	}

	if err := s.store.ArchiveCollection(ctx, spaceID, id); err != nil {
		return err
	}

	s.inv.Invalidate(ctx, collectionsTag(spaceID), collectionTag(spaceID, id))
	return nil
}

// AddItem binds an item into a collection; re-adding an archived mapping
// revives it.
func (s *TidbitService) AddItem(ctx context.Context, p *principal.Principal, spaceID, collectionID string, req tidbit.AddItemRequest) (*tidbit.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	if err := s.store.AddCollectionItem(ctx, spaceID, collectionID, req); err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, collectionsTag(spaceID), collectionTag(spaceID, collectionID))
	return s.projectCollection(ctx, spaceID, collectionID)
}

// Reorder rewrites the item order of a collection in one transaction,
// guarded by the caller's last-read version.
func (s *TidbitService) Reorder(ctx context.Context, p *principal.Principal, spaceID, collectionID string, req tidbit.ReorderRequest) (*tidbit.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	if err := s.store.ReorderCollectionItems(ctx, spaceID, collectionID, req); err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, collectionsTag(spaceID), collectionTag(spaceID, collectionID))
	return s.projectCollection(ctx, spaceID, collectionID)
}

// MoveItem relocates an item between two collections of the same space,
// atomically and version-guarded on both sides. Both collection
// projections go stale and both tags are invalidated.
func (s *TidbitService) MoveItem(ctx context.Context, p *principal.Principal, spaceID string, req tidbit.MoveItemRequest) (*tidbit.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	if err := s.store.MoveCollectionItem(ctx, spaceID, req); err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx,
		collectionsTag(spaceID),
		collectionTag(spaceID, req.SourceByteCollectionID),
		collectionTag(spaceID, req.TargetByteCollectionID))
	return s.projectCollection(ctx, spaceID, req.TargetByteCollectionID)
}

// projectCollection re-reads the collection and its items into the
// normalized response shape. Mutations return this instead of patching
// the in-memory request, so the response always reflects committed state.
func (s *TidbitService) projectCollection(ctx context.Context, spaceID, id string) (*tidbit.Summary, error) {
	c, err := s.store.GetCollection(ctx, spaceID, id)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListCollectionItems(ctx, spaceID, id)
	if err != nil {
		return nil, err
	}
	return &tidbit.Summary{Collection: *c, Items: items}, nil
}

// notify sends a space-routed notification in the background. Failures
// are logged; notifications never affect the request outcome.
func (s *TidbitService) notify(ctx context.Context, spaceID, title, message string) {
	if s.notifier == nil {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		n := notifier.Notification{
			Title:      title,
			Message:    message,
			Level:      "success",
			Source:     spaceID,
			WebhookURL: s.spaces.WebhookURL(bg, spaceID),
		}
		if err := s.notifier.Send(bg, n); err != nil && !errors.Is(err, notifier.ErrNotConfigured) {
			slog.Warn("notification send failed", "space_id", spaceID, "error", err)
		}
	}()
}
