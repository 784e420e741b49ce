package http

import (
	"net/http"

	"github.com/bytespace-io/bytespace/internal/domain/user"
	"github.com/bytespace-io/bytespace/internal/middleware"
)

// Login authenticates a user and returns an access token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Refresh issues a new access token for the authenticated caller.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil || p.UserID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resp, err := h.auth.Refresh(r.Context(), p.UserID)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the authenticated principal of the current request.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateUser registers a new user. Super-admin only, enforced by route
// middleware.
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.CreateRequest](w, r)
	if !ok {
		return
	}

	u, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// ListUsers returns all users. Super-admin only.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if users == nil {
		users = []user.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateSpaceAPIKey mints a new API key for a space. The plaintext key
// appears in this response only.
func (h *Handlers) CreateSpaceAPIKey(w http.ResponseWriter, r *http.Request) {
	spaceID := urlParam(r, "spaceID")
	req, ok := readJSON[struct {
		Name string `json:"name"`
	}](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sp, err := h.spaces.Resolve(r.Context(), spaceID)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	if err := h.gate.Authorize(r.Context(), p, sp); err != nil {
		writeDomainError(w, err, "space not found")
		return
	}

	key, err := h.auth.CreateSpaceAPIKey(r.Context(), spaceID, req.Name, actorLabel(r))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusCreated, key)
}

// DeleteSpaceAPIKey revokes an API key.
func (h *Handlers) DeleteSpaceAPIKey(w http.ResponseWriter, r *http.Request) {
	spaceID := urlParam(r, "spaceID")

	p := middleware.PrincipalFromContext(r.Context())
	sp, err := h.spaces.Resolve(r.Context(), spaceID)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	if err := h.gate.Authorize(r.Context(), p, sp); err != nil {
		writeDomainError(w, err, "space not found")
		return
	}

	if err := h.auth.DeleteSpaceAPIKey(r.Context(), spaceID, urlParam(r, "keyID")); err != nil {
		writeDomainError(w, err, "api key not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actorLabel names the caller for audit fields.
func actorLabel(r *http.Request) string {
	p := middleware.PrincipalFromContext(r.Context())
	if p == nil {
		return "anonymous"
	}
	if p.Username != "" {
		return p.Username
	}
	return p.UserID
}
