package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bytespace-io/bytespace/internal/service"
)

// Handlers bundles every HTTP handler with the services it fronts.
type Handlers struct {
	auth    *service.AuthService
	gate    *service.Gate
	spaces  *service.SpaceService
	tidbits *service.TidbitService
	courses *service.CourseService
	rubrics *service.RubricService
	uploads *service.UploadService

	healthChecks map[string]func(ctx context.Context) error
}

// NewHandlers wires handlers to their services. healthChecks maps a
// dependency name to its probe; nil entries are skipped.
func NewHandlers(
	auth *service.AuthService,
	gate *service.Gate,
	spaces *service.SpaceService,
	tidbits *service.TidbitService,
	courses *service.CourseService,
	rubrics *service.RubricService,
	uploads *service.UploadService,
	healthChecks map[string]func(ctx context.Context) error,
) *Handlers {
	return &Handlers{
		auth:         auth,
		gate:         gate,
		spaces:       spaces,
		tidbits:      tidbits,
		courses:      courses,
		rubrics:      rubrics,
		uploads:      uploads,
		healthChecks: healthChecks,
	}
}

// Health reports the status of each registered dependency probe. The
// endpoint stays 200 as long as the process is serving; individual
// dependencies report their own state.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.healthChecks))
	for name, probe := range h.healthChecks {
		if probe == nil {
			continue
		}
		if err := probe(ctx); err != nil {
			deps[name] = "unhealthy"
		} else {
			deps[name] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"dependencies": deps,
	})
}
