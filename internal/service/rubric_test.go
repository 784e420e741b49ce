package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/rubric"
	"github.com/bytespace-io/bytespace/internal/service"
)

func newRubricFixture(t *testing.T) (*service.RubricService, *mockStore) {
	t.Helper()
	store := newMockStore(acmeSpace())
	c := newMemCache()
	gate := service.NewGate(nil)
	inv := service.NewInvalidator(c, nil, nil)
	spaceSvc := service.NewSpaceService(store, c, gate, inv, nil, time.Minute)
	return service.NewRubricService(store, spaceSvc, gate, inv), store
}

func seedRubric(t *testing.T, svc *service.RubricService) *rubric.Rubric {
	t.Helper()
	r, err := svc.Upsert(context.Background(), admin, "acme", rubric.UpsertRequest{
		ID:   "r1",
		Name: "Code Review",
		Levels: []rubric.Level{
			{Title: "Needs Work", Score: 1},
			{Title: "Excellent", Score: 3},
		},
		Criteria: []rubric.Criterion{
			{Title: "Clarity"},
			{Title: "Correctness"},
		},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return r
}

func TestRubricUpsertRequiresLevelsAndCriteria(t *testing.T) {
	svc, store := newRubricFixture(t)

	_, err := svc.Upsert(context.Background(), admin, "acme", rubric.UpsertRequest{Name: "Empty"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Upsert(no levels) = %v, want ErrValidation", err)
	}
	if store.writeCalls != 0 {
		t.Fatalf("store saw %d writes for an invalid request, want 0", store.writeCalls)
	}
}

func TestRateRejectsUnknownCriterion(t *testing.T) {
	svc, store := newRubricFixture(t)
	r := seedRubric(t, svc)
	writesBefore := store.writeCalls
	ctx := context.Background()

	_, err := svc.Rate(ctx, admin, "acme", r.ID, rubric.RateRequest{
		Username: "learner",
		Scores:   map[string]int{"Clarity": 3, "Vibes": 1},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Rate(unknown criterion) = %v, want ErrValidation", err)
	}
	if store.writeCalls != writesBefore {
		t.Fatal("invalid rating reached the store")
	}

	rating, err := svc.Rate(ctx, admin, "acme", r.ID, rubric.RateRequest{
		Username: "learner",
		Scores:   map[string]int{"Clarity": 3, "Correctness": 1},
	})
	if err != nil {
		t.Fatalf("Rate() error = %v", err)
	}
	if rating.RubricID != r.ID {
		t.Fatalf("rating bound to rubric %q, want %q", rating.RubricID, r.ID)
	}

	ratings, err := svc.ListRatings(ctx, "acme", r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ratings) != 1 {
		t.Fatalf("ListRatings() returned %d ratings, want 1", len(ratings))
	}
}

func TestRateMissingRubric(t *testing.T) {
	svc, _ := newRubricFixture(t)

	_, err := svc.Rate(context.Background(), admin, "acme", "ghost", rubric.RateRequest{
		Username: "learner",
		Scores:   map[string]int{"Clarity": 2},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Rate(missing rubric) = %v, want ErrNotFound", err)
	}
}

func TestRubricWriteDenied(t *testing.T) {
	svc, store := newRubricFixture(t)

	_, err := svc.Upsert(context.Background(), stranger, "acme", rubric.UpsertRequest{
		Name:     "Nope",
		Levels:   []rubric.Level{{Title: "A", Score: 1}},
		Criteria: []rubric.Criterion{{Title: "B"}},
	})
	if !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("Upsert() by non-admin = %v, want ErrPermission", err)
	}
	if store.writeCalls != 0 {
		t.Fatalf("store saw %d writes after a denied request, want 0", store.writeCalls)
	}
}
