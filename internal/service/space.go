package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/port/cache"
	"github.com/bytespace-io/bytespace/internal/port/database"
	"github.com/bytespace-io/bytespace/internal/port/notifier"
)

// SpaceService resolves and manages spaces, the tenant boundary every
// other resource hangs off.
type SpaceService struct {
	store    database.Store
	cache    cache.Cache
	gate     *Gate
	inv      *Invalidator
	notifier notifier.Notifier
	ttl      time.Duration
}

// NewSpaceService creates the space service.
func NewSpaceService(store database.Store, c cache.Cache, gate *Gate, inv *Invalidator, n notifier.Notifier, ttl time.Duration) *SpaceService {
	return &SpaceService{store: store, cache: c, gate: gate, inv: inv, notifier: n, ttl: ttl}
}

func spaceTag(id string) string { return "space:" + id }

// Resolve loads the space a request targets. An empty id is a validation
// error, not a lookup failure; an unknown id is ErrNotFound. Resolution
// happens before any permission check so that a missing space reads the
// same to admins and strangers.
func (s *SpaceService) Resolve(ctx context.Context, id string) (*space.Space, error) {
	if id == "" {
		return nil, domain.Validationf("space id is required")
	}

	if data, ok, _ := s.cache.Get(ctx, spaceTag(id)); ok {
		var sp space.Space
		if err := json.Unmarshal(data, &sp); err == nil {
			return &sp, nil
		}
	}

	sp, err := s.store.GetSpace(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(sp); err == nil {
		_ = s.cache.Set(ctx, spaceTag(id), data, s.ttl)
	}
	return sp, nil
}

// Create registers a new space. Reaching here requires a super admin;
// route middleware enforces that, and the created-by audit field records
// who did it.
func (s *SpaceService) Create(ctx context.Context, p *principal.Principal, req space.CreateRequest) (*space.Space, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sp, err := s.store.CreateSpace(ctx, req, actorName(p))
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		bg := context.WithoutCancel(ctx)
		go func() {
			n := notifier.Notification{
				Title:   "Space created",
				Message: fmt.Sprintf("Space %q (%s) created by %s", sp.Name, sp.ID, actorName(p)),
				Level:   "info",
				Source:  sp.ID,
			}
			if err := s.notifier.Send(bg, n); err != nil && !errors.Is(err, notifier.ErrNotConfigured) {
				slog.Warn("notification send failed", "space_id", sp.ID, "error", err)
			}
		}()
	}
	return sp, nil
}

// List returns all spaces.
func (s *SpaceService) List(ctx context.Context) ([]space.Space, error) {
	return s.store.ListSpaces(ctx)
}

// GetProjected returns the space joined with its integration settings and
// API key metadata. The three reads run concurrently; a space with no
// integrations row projects a nil Integration rather than an error.
func (s *SpaceService) GetProjected(ctx context.Context, id string) (*space.WithIntegrations, error) {
	sp, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &space.WithIntegrations{Space: *sp}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, err := s.store.GetSpaceIntegration(gctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		out.Integration = in
		return nil
	})
	g.Go(func() error {
		keys, err := s.store.ListSpaceAPIKeys(gctx, id)
		if err != nil {
			return err
		}
		out.APIKeys = keys
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("project space %s: %w", id, err)
	}
	return out, nil
}

// Update applies partial updates to a space after the permission gate.
func (s *SpaceService) Update(ctx context.Context, p *principal.Principal, id string, req space.UpdateRequest) (*space.Space, error) {
	sp, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, domain.Validationf("space name must not be empty")
		}
		sp.Name = *req.Name
	}
	if req.AdminUsernames != nil {
		sp.AdminUsernames = req.AdminUsernames
	}
	if req.Domains != nil {
		sp.Domains = req.Domains
	}
	if req.Features != nil {
		sp.Features = req.Features
	}

	if err := s.store.UpdateSpace(ctx, sp); err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, spaceTag(id))

	return s.store.GetSpace(ctx, id)
}

// UpdateTheme validates and replaces the space's theme colors.
func (s *SpaceService) UpdateTheme(ctx context.Context, p *principal.Principal, id string, theme *space.ThemeColors) (*space.Space, error) {
	if theme == nil {
		return nil, domain.Validationf("themeColors payload is required")
	}
	if err := theme.Validate(); err != nil {
		return nil, err
	}

	sp, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	sp.Theme = theme
	if err := s.store.UpdateSpace(ctx, sp); err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, spaceTag(id))

	return s.store.GetSpace(ctx, id)
}

// UpdateIntegration upserts the space's integration settings row.
func (s *SpaceService) UpdateIntegration(ctx context.Context, p *principal.Principal, id string, in space.Integration) (*space.Integration, error) {
	sp, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return nil, err
	}

	in.SpaceID = id
	if err := s.store.UpsertSpaceIntegration(ctx, &in); err != nil {
		return nil, err
	}
	s.inv.Invalidate(ctx, spaceTag(id))

	return s.store.GetSpaceIntegration(ctx, id)
}

// WebhookURL returns the space's Discord webhook, or empty when none is
// configured. Used to route notifications; errors degrade to empty.
func (s *SpaceService) WebhookURL(ctx context.Context, id string) string {
	in, err := s.store.GetSpaceIntegration(ctx, id)
	if err != nil {
		return ""
	}
	return in.DiscordWebhookURL
}

// actorName renders a principal for audit columns.
func actorName(p *principal.Principal) string {
	switch {
	case p == nil:
		return "anonymous"
	case p.Username != "":
		return p.Username
	case p.APIKeySpaceID != "":
		return "api-key:" + p.APIKeySpaceID
	default:
		return p.UserID
	}
}
