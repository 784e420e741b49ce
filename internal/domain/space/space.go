// Package space defines the tenant domain model. A space is an isolated
// customer organization; every mutable resource belongs to exactly one space.
package space

import (
	"regexp"
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
)

// Space represents an isolated tenant.
type Space struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	AdminUsernames     []string     `json:"adminUsernames"`
	Features           []string     `json:"features"`
	Domains            []string     `json:"domains"`
	Theme              *ThemeColors `json:"themeColors,omitempty"`
	PublicWriteAllowed bool         `json:"publicWriteAllowed"`
	CreatedBy          string       `json:"createdBy"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// ThemeColors is the typed theme configuration stored per space.
// It replaces the loosely-typed JSON blob with an enumerated option set
// validated at the boundary.
type ThemeColors struct {
	Primary   string `json:"primaryColor"`
	Bg        string `json:"bgColor"`
	Text      string `json:"textColor"`
	Link      string `json:"linkColor"`
	Heading   string `json:"headingColor"`
	Block     string `json:"blockBg"`
	Border    string `json:"borderColor"`
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that every non-empty color is a hex literal.
func (t *ThemeColors) Validate() error {
	for name, v := range map[string]string{
		"primaryColor": t.Primary,
		"bgColor":      t.Bg,
		"textColor":    t.Text,
		"linkColor":    t.Link,
		"headingColor": t.Heading,
		"blockBg":      t.Block,
		"borderColor":  t.Border,
	} {
		if v != "" && !hexColor.MatchString(v) {
			return domain.Validationf("%s must be a hex color, got %q", name, v)
		}
	}
	return nil
}

var idRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// CreateRequest holds the fields required to create a new space.
// PublicWriteAllowed is decided at creation time; handlers never
// special-case individual space ids.
type CreateRequest struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	AdminUsernames     []string `json:"adminUsernames"`
	PublicWriteAllowed bool     `json:"publicWriteAllowed"`
}

// Validate checks required fields eagerly, before any store access.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return domain.Validationf("space name is required")
	}
	if !idRegex.MatchString(r.ID) {
		return domain.Validationf("invalid space id %q: must be 3-64 lowercase alphanumeric characters or hyphens", r.ID)
	}
	return nil
}

// UpdateRequest holds the fields that can be updated on a space.
// Nil fields are left unchanged.
type UpdateRequest struct {
	Name           *string  `json:"name,omitempty"`
	AdminUsernames []string `json:"adminUsernames,omitempty"`
	Domains        []string `json:"domains,omitempty"`
	Features       []string `json:"features,omitempty"`
}

// Integration holds the secondary per-space settings row joined into
// the space projection.
type Integration struct {
	SpaceID           string    `json:"spaceId"`
	DiscordWebhookURL string    `json:"discordWebhookUrl,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// WithIntegrations is the projected response shape for space reads:
// the space row joined with its integration settings and API key metadata.
type WithIntegrations struct {
	Space
	Integration *Integration `json:"spaceIntegrations,omitempty"`
	APIKeys     []APIKey     `json:"apiKeys"`
}

// APIKey is a stored tenant key. Only the SHA-256 hash is persisted;
// the plain key is shown once at creation.
type APIKey struct {
	ID         string    `json:"id"`
	SpaceID    string    `json:"spaceId"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"`
	KeyHash    string    `json:"-"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt,omitzero"`
}

// CreateAPIKeyResponse carries the one-time plain key alongside the record.
type CreateAPIKeyResponse struct {
	APIKey
	PlainKey string `json:"plainKey"`
}

// APIKeyPrefix namespaces Bytespace keys so leaked strings are identifiable.
const APIKeyPrefix = "bsk_"
