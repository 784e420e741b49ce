// Package tidbit defines bytes (short learning units) and byte collections,
// the ordered groupings they are published in.
package tidbit

import (
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
)

// PublishStatus controls whether a resource is visible to learners.
type PublishStatus string

const (
	StatusDraft PublishStatus = "Draft"
	StatusLive  PublishStatus = "Live"
)

// ItemType discriminates the kinds of items a collection can hold.
type ItemType string

const (
	ItemByte  ItemType = "Byte"
	ItemDemo  ItemType = "Demo"
	ItemShort ItemType = "Short"
)

func validItemType(t ItemType) bool {
	switch t {
	case ItemByte, ItemDemo, ItemShort:
		return true
	}
	return false
}

// Byte is a short learning unit made of ordered steps.
type Byte struct {
	ID        string        `json:"id"`
	SpaceID   string        `json:"spaceId"`
	Name      string        `json:"name"`
	Content   string        `json:"content"`
	Steps     []Step        `json:"steps"`
	Status    PublishStatus `json:"publishStatus"`
	Archived  bool          `json:"archive"`
	CreatedBy string        `json:"createdBy"`
	UpdatedBy string        `json:"updatedBy"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Step is one page of a byte.
type Step struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// UpsertByteRequest creates or replaces a byte keyed by (space, id).
// An empty ID lets the store assign one.
type UpsertByteRequest struct {
	ID      string        `json:"id,omitempty"`
	Name    string        `json:"name"`
	Content string        `json:"content"`
	Steps   []Step        `json:"steps"`
	Status  PublishStatus `json:"publishStatus,omitempty"`
}

// Validate checks required fields eagerly, before any store access.
func (r *UpsertByteRequest) Validate() error {
	if r.Name == "" {
		return domain.Validationf("byte name is required")
	}
	if r.Status != "" && r.Status != StatusDraft && r.Status != StatusLive {
		return domain.Validationf("invalid publishStatus %q", r.Status)
	}
	return nil
}

// GenerateByteRequest asks the LLM pipeline to draft a byte from raw content.
type GenerateByteRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// Validate checks required fields eagerly.
func (r *GenerateByteRequest) Validate() error {
	if r.Topic == "" {
		return domain.Validationf("topic is required")
	}
	if r.Content == "" {
		return domain.Validationf("content is required")
	}
	return nil
}

// Collection is an ordered grouping of items within a space.
// Version is the optimistic-concurrency counter; reorder and move callers
// must supply the version they last read.
type Collection struct {
	ID          string    `json:"id"`
	SpaceID     string    `json:"spaceId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Priority    int       `json:"priority"`
	Archived    bool      `json:"archive"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CollectionItem is the mapping row binding an item into a collection.
type CollectionItem struct {
	CollectionID string   `json:"byteCollectionId"`
	ItemID       string   `json:"itemId"`
	ItemType     ItemType `json:"itemType"`
	Order        int      `json:"order"`
	Archived     bool     `json:"archive"`
}

// ItemSummary is the projected view of one collection member.
type ItemSummary struct {
	ItemID   string   `json:"itemId"`
	ItemType ItemType `json:"itemType"`
	Name     string   `json:"name"`
	Order    int      `json:"order"`
	Archived bool     `json:"archive"`
}

// Summary is the projected response shape for collection reads: the
// collection row plus its member items, re-read after every mutation.
type Summary struct {
	Collection
	Items []ItemSummary `json:"items"`
}

// CreateCollectionRequest creates a collection. An empty ID lets the
// store assign one.
type CreateCollectionRequest struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// Validate checks required fields eagerly.
func (r *CreateCollectionRequest) Validate() error {
	if r.Name == "" {
		return domain.Validationf("collection name is required")
	}
	return nil
}

// UpdateCollectionRequest holds partial updates; nil fields are unchanged.
type UpdateCollectionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
}

// AddItemRequest binds an existing item into a collection.
type AddItemRequest struct {
	ItemID   string   `json:"itemId"`
	ItemType ItemType `json:"itemType"`
	Order    int      `json:"order"`
}

// Validate checks required fields eagerly.
func (r *AddItemRequest) Validate() error {
	if r.ItemID == "" {
		return domain.Validationf("itemId is required")
	}
	if !validItemType(r.ItemType) {
		return domain.Validationf("invalid itemType %q", r.ItemType)
	}
	return nil
}

// ItemOrder is one tuple of a batch reorder.
type ItemOrder struct {
	ItemID   string   `json:"itemId"`
	ItemType ItemType `json:"itemType"`
	Order    int      `json:"order"`
}

// ReorderRequest updates the order field of every listed mapping row in
// one transaction. Version carries the collection version the caller
// last read.
type ReorderRequest struct {
	Version            int         `json:"version"`
	NewItemIDAndOrders []ItemOrder `json:"newItemIdAndOrders"`
}

// Validate checks required fields eagerly.
func (r *ReorderRequest) Validate() error {
	if len(r.NewItemIDAndOrders) == 0 {
		return domain.Validationf("newItemIdAndOrders is required")
	}
	for i, o := range r.NewItemIDAndOrders {
		if o.ItemID == "" {
			return domain.Validationf("newItemIdAndOrders[%d].itemId is required", i)
		}
		if !validItemType(o.ItemType) {
			return domain.Validationf("newItemIdAndOrders[%d].itemType %q is invalid", i, o.ItemType)
		}
	}
	return nil
}

// MoveItemRequest moves an item mapping from one collection to another.
// SourceVersion and TargetVersion are the collection versions the caller
// last read.
type MoveItemRequest struct {
	ItemID                 string   `json:"itemId"`
	ItemType               ItemType `json:"itemType"`
	SourceByteCollectionID string   `json:"sourceByteCollectionId"`
	TargetByteCollectionID string   `json:"targetByteCollectionId"`
	SourceVersion          int      `json:"sourceVersion"`
	TargetVersion          int      `json:"targetVersion"`
}

// Validate checks required fields eagerly.
func (r *MoveItemRequest) Validate() error {
	if r.ItemID == "" {
		return domain.Validationf("itemId is required")
	}
	if !validItemType(r.ItemType) {
		return domain.Validationf("invalid itemType %q", r.ItemType)
	}
	if r.SourceByteCollectionID == "" {
		return domain.Validationf("sourceByteCollectionId is required")
	}
	if r.TargetByteCollectionID == "" {
		return domain.Validationf("targetByteCollectionId is required")
	}
	if r.SourceByteCollectionID == r.TargetByteCollectionID {
		return domain.Validationf("source and target collections must differ")
	}
	return nil
}
