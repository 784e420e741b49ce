package service

import (
	"context"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/domain/rubric"
	"github.com/bytespace-io/bytespace/internal/port/database"
)

// RubricService executes rubric and rating operations.
type RubricService struct {
	store  database.Store
	spaces *SpaceService
	gate   *Gate
	inv    *Invalidator
}

// NewRubricService creates the rubric service.
func NewRubricService(store database.Store, spaces *SpaceService, gate *Gate, inv *Invalidator) *RubricService {
	return &RubricService{store: store, spaces: spaces, gate: gate, inv: inv}
}

func rubricsTag(spaceID string) string { return "rubrics:" + spaceID }

// Upsert creates or replaces a rubric.
func (s *RubricService) Upsert(ctx context.Context, p *principal.Principal, spaceID string, req rubric.UpsertRequest) (*rubric.Rubric, error) {
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

	r, err := s.store.UpsertRubric(ctx, spaceID, req, actorName(p))
	if err != nil {
		return nil, err
	}

	s.inv.Invalidate(ctx, rubricsTag(spaceID))
	return r, nil
}

// Get returns one rubric.
func (s *RubricService) Get(ctx context.Context, spaceID, id string) (*rubric.Rubric, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.store.GetRubric(ctx, spaceID, id)
}

// List returns the space's rubrics.
func (s *RubricService) List(ctx context.Context, spaceID string, includeArchived bool) ([]rubric.Rubric, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.store.ListRubrics(ctx, spaceID, includeArchived)
}

// Archive soft-deletes a rubric.
func (s *RubricService) Archive(ctx context.Context, p *principal.Principal, spaceID, id string) error {
	sp, err := s.spaces.Resolve(ctx, spaceID)
	if err != nil {
		return err
	}
	if err := s.gate.Authorize(ctx, p, sp); err != nil {
		return err
	}

	if err := s.store.ArchiveRubric(ctx, spaceID, id); err != nil {
		return err
	}
	s.inv.Invalidate(ctx, rubricsTag(spaceID))
	return nil
}

// Rate submits a rating against a rubric. Scores must reference known
// criteria; unknown titles are a validation error, caught before the
// insert.
func (s *RubricService) Rate(ctx context.Context, p *principal.Principal, spaceID, rubricID string, req rubric.RateRequest) (*rubric.Rating, error) {
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

	r, err := s.store.GetRubric(ctx, spaceID, rubricID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(r.Criteria))
	for _, c := range r.Criteria {
		known[c.Title] = true
	}
	for title := range req.Scores {
		if !known[title] {
			return nil, domain.Validationf("unknown criterion %q", title)
		}
	}

	return s.store.CreateRating(ctx, spaceID, rubricID, req)
}

// ListRatings returns a rubric's ratings.
func (s *RubricService) ListRatings(ctx context.Context, spaceID, rubricID string) ([]rubric.Rating, error) {
	if _, err := s.spaces.Resolve(ctx, spaceID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRubric(ctx, spaceID, rubricID); err != nil {
		return nil, err
	}
	return s.store.ListRatings(ctx, spaceID, rubricID)
}
