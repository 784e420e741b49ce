// Package principal defines the authenticated actor derived per-request
// from a decoded session token or a matched space API key.
package principal

import "slices"

// Principal is the authenticated actor performing a request.
// It is constructed by the auth middleware and never persisted.
type Principal struct {
	UserID     string `json:"userId,omitempty"`
	Username   string `json:"username,omitempty"`
	SuperAdmin bool   `json:"isSuperAdmin"`

	// APIKeySpaceID is set when the request authenticated with an
	// X-API-Key header; the principal then acts as that space.
	APIKeySpaceID string `json:"-"`
}

// IsAdminOf reports whether the principal may mutate resources of the
// space with the given id and admin list.
func (p *Principal) IsAdminOf(spaceID string, adminUsernames []string) bool {
	if p == nil {
		return false
	}
	if p.SuperAdmin {
		return true
	}
	if p.APIKeySpaceID != "" && p.APIKeySpaceID == spaceID {
		return true
	}
	return p.Username != "" && slices.Contains(adminUsernames, p.Username)
}
