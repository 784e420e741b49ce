package http

import (
	"net/http"

	"github.com/bytespace-io/bytespace/internal/domain/tidbit"
	"github.com/bytespace-io/bytespace/internal/middleware"
)

// --- Bytes ---

// UpsertByte creates or replaces a byte under the target space.
func (h *Handlers) UpsertByte(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.UpsertByteRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	b, err := h.tidbits.UpsertByte(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GenerateByte drafts a byte from raw content via the LLM pipeline.
func (h *Handlers) GenerateByte(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.GenerateByteRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	b, err := h.tidbits.GenerateByte(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetByte returns one byte.
func (h *Handlers) GetByte(w http.ResponseWriter, r *http.Request) {
	b, err := h.tidbits.GetByte(r.Context(), urlParam(r, "spaceID"), urlParam(r, "byteID"))
	if err != nil {
		writeDomainError(w, err, "byte not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListBytes returns the space's bytes.
func (h *Handlers) ListBytes(w http.ResponseWriter, r *http.Request) {
	bytes, err := h.tidbits.ListBytes(r.Context(), urlParam(r, "spaceID"), includeArchived(r))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	if bytes == nil {
		bytes = []tidbit.Byte{}
	}
	writeJSON(w, http.StatusOK, bytes)
}

// ArchiveByte soft-deletes a byte and its collection memberships.
func (h *Handlers) ArchiveByte(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.tidbits.ArchiveByte(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "byteID")); err != nil {
		writeDomainError(w, err, "byte not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Byte collections ---

// CreateCollection creates an empty collection.
func (h *Handlers) CreateCollection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.CreateCollectionRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sum, err := h.tidbits.CreateCollection(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusCreated, sum)
}

// GetCollection returns the projected collection with its items.
func (h *Handlers) GetCollection(w http.ResponseWriter, r *http.Request) {
	sum, err := h.tidbits.GetCollection(r.Context(), urlParam(r, "spaceID"), urlParam(r, "collectionID"))
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ListCollections returns the space's collections ordered by priority.
func (h *Handlers) ListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := h.tidbits.ListCollections(r.Context(), urlParam(r, "spaceID"), includeArchived(r))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	if cols == nil {
		cols = []tidbit.Collection{}
	}
	writeJSON(w, http.StatusOK, cols)
}

// UpdateCollection applies partial updates to a collection.
func (h *Handlers) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.UpdateCollectionRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sum, err := h.tidbits.UpdateCollection(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "collectionID"), req)
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ArchiveCollection soft-deletes a collection and its membership rows.
func (h *Handlers) ArchiveCollection(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.tidbits.ArchiveCollection(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "collectionID")); err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCollectionItem binds an item into a collection.
func (h *Handlers) AddCollectionItem(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.AddItemRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sum, err := h.tidbits.AddItem(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "collectionID"), req)
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ReorderCollectionItems rewrites a collection's item order, guarded by
// the caller's last-read version.
func (h *Handlers) ReorderCollectionItems(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.ReorderRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sum, err := h.tidbits.Reorder(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "collectionID"), req)
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// MoveCollectionItem relocates an item between two collections of the
// space. The response projects the target collection.
func (h *Handlers) MoveCollectionItem(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tidbit.MoveItemRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	sum, err := h.tidbits.MoveItem(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "collection not found")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
