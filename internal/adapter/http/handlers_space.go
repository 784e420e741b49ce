package http

import (
	"net/http"

	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/middleware"
)

// ListSpaces returns all spaces.
func (h *Handlers) ListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.spaces.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if spaces == nil {
		spaces = []space.Space{}
	}
	writeJSON(w, http.StatusOK, spaces)
}

// CreateSpace registers a new tenant. Super-admin only, enforced by route
// middleware.
func (h *Handlers) CreateSpace(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[space.CreateRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sp, err := h.spaces.Create(r.Context(), p, req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

// GetSpace returns the projected space: row, integrations, API key metadata.
func (h *Handlers) GetSpace(w http.ResponseWriter, r *http.Request) {
	out, err := h.spaces.GetProjected(r.Context(), urlParam(r, "spaceID"))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateSpace applies partial updates to a space.
func (h *Handlers) UpdateSpace(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[space.UpdateRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sp, err := h.spaces.Update(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// UpdateSpaceTheme replaces the space's theme colors.
func (h *Handlers) UpdateSpaceTheme(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[*space.ThemeColors](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sp, err := h.spaces.UpdateTheme(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// UpdateSpaceFeatures replaces the space's feature flag list.
func (h *Handlers) UpdateSpaceFeatures(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[struct {
		Features []string `json:"features"`
	}](w, r)
	if !ok {
		return
	}
	if req.Features == nil {
		writeError(w, http.StatusBadRequest, "features is required")
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sp, err := h.spaces.Update(r.Context(), p, urlParam(r, "spaceID"), space.UpdateRequest{Features: req.Features})
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// UpdateSpaceIntegration upserts the space's integration settings.
func (h *Handlers) UpdateSpaceIntegration(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[space.Integration](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	in, err := h.spaces.UpdateIntegration(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// ListSpaceAPIKeys returns a space's API key metadata (never hashes).
func (h *Handlers) ListSpaceAPIKeys(w http.ResponseWriter, r *http.Request) {
	spaceID := urlParam(r, "spaceID")
	if _, err := h.spaces.Resolve(r.Context(), spaceID); err != nil {
		writeDomainError(w, err, "space not found")
		return
	}

	keys, err := h.auth.ListSpaceAPIKeys(r.Context(), spaceID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if keys == nil {
		keys = []space.APIKey{}
	}
	writeJSON(w, http.StatusOK, keys)
}
