package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/service"
)

func newSpaceFixture(t *testing.T, spaces ...*space.Space) (*service.SpaceService, *mockStore, *memCache) {
	t.Helper()
	store := newMockStore(spaces...)
	c := newMemCache()
	gate := service.NewGate(nil)
	inv := service.NewInvalidator(c, nil, nil)
	return service.NewSpaceService(store, c, gate, inv, nil, time.Minute), store, c
}

func TestResolve(t *testing.T) {
	svc, store, _ := newSpaceFixture(t, acmeSpace())
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Resolve(\"\") = %v, want ErrValidation", err)
	}
	if _, err := svc.Resolve(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Resolve(unknown) = %v, want ErrNotFound", err)
	}

	sp, err := svc.Resolve(ctx, "acme")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if sp.Name != "Acme" {
		t.Fatalf("Name = %q, want Acme", sp.Name)
	}

	// Second resolve is served from cache.
	store.mu.Lock()
	delete(store.spaces, "acme")
	store.mu.Unlock()
	if _, err := svc.Resolve(ctx, "acme"); err != nil {
		t.Fatalf("cached Resolve() error = %v", err)
	}
}

func TestSpaceUpdateMergesFields(t *testing.T) {
	svc, _, c := newSpaceFixture(t, acmeSpace())
	ctx := context.Background()

	name := "Acme Corp"
	updated, err := svc.Update(ctx, admin, "acme", space.UpdateRequest{
		Name:           &name,
		AdminUsernames: []string{"alice", "dana"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Fatalf("Name = %q after update", updated.Name)
	}
	if len(updated.AdminUsernames) != 2 {
		t.Fatalf("AdminUsernames = %v", updated.AdminUsernames)
	}

	tags := c.deletedTags()
	if len(tags) == 0 || tags[0] != "space:acme" {
		t.Fatalf("invalidated tags = %v, want space:acme", tags)
	}

	empty := ""
	if _, err := svc.Update(ctx, admin, "acme", space.UpdateRequest{Name: &empty}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Update(empty name) = %v, want ErrValidation", err)
	}

	if _, err := svc.Update(ctx, stranger, "acme", space.UpdateRequest{Name: &name}); !errors.Is(err, domain.ErrPermission) {
		t.Fatalf("Update() by non-admin = %v, want ErrPermission", err)
	}
}

func TestUpdateTheme(t *testing.T) {
	svc, _, _ := newSpaceFixture(t, acmeSpace())
	ctx := context.Background()

	if _, err := svc.UpdateTheme(ctx, admin, "acme", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdateTheme(nil) = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateTheme(ctx, admin, "acme", &space.ThemeColors{Primary: "blue"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdateTheme(non-hex) = %v, want ErrValidation", err)
	}

	sp, err := svc.UpdateTheme(ctx, admin, "acme", &space.ThemeColors{Primary: "#0af", Bg: "#101820"})
	if err != nil {
		t.Fatalf("UpdateTheme() error = %v", err)
	}
	if sp.Theme == nil || sp.Theme.Primary != "#0af" {
		t.Fatalf("Theme = %+v after update", sp.Theme)
	}
}

func TestGetProjected(t *testing.T) {
	svc, store, _ := newSpaceFixture(t, acmeSpace())
	ctx := context.Background()

	// No integrations row projects nil, not an error.
	out, err := svc.GetProjected(ctx, "acme")
	if err != nil {
		t.Fatalf("GetProjected() error = %v", err)
	}
	if out.Integration != nil {
		t.Fatalf("Integration = %+v, want nil", out.Integration)
	}

	if err := store.UpsertSpaceIntegration(ctx, &space.Integration{
		SpaceID:           "acme",
		DiscordWebhookURL: "https://discord.example/hook",
	}); err != nil {
		t.Fatal(err)
	}

	out, err = svc.GetProjected(ctx, "acme")
	if err != nil {
		t.Fatalf("GetProjected() error = %v", err)
	}
	if out.Integration == nil || out.Integration.DiscordWebhookURL == "" {
		t.Fatalf("Integration = %+v, want webhook populated", out.Integration)
	}
	if svc.WebhookURL(ctx, "acme") != "https://discord.example/hook" {
		t.Fatal("WebhookURL() did not read the integration row")
	}
}

func TestSpaceCreateValidation(t *testing.T) {
	svc, _, _ := newSpaceFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, space.CreateRequest{ID: "Bad ID!", Name: "X"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Create(invalid id) = %v, want ErrValidation", err)
	}

	sp, err := svc.Create(ctx, admin, space.CreateRequest{ID: "new-space", Name: "New", AdminUsernames: []string{"alice"}})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sp.CreatedBy != "alice" {
		t.Fatalf("CreatedBy = %q, want the acting username", sp.CreatedBy)
	}

	_, err = svc.Create(ctx, admin, space.CreateRequest{ID: "new-space", Name: "Dup"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Create(duplicate id) = %v, want ErrConflict", err)
	}
}
