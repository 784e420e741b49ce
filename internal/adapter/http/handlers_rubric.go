package http

import (
	"net/http"

	"github.com/bytespace-io/bytespace/internal/domain/rubric"
	"github.com/bytespace-io/bytespace/internal/middleware"
)

// UpsertRubric creates or replaces a rubric.
func (h *Handlers) UpsertRubric(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[rubric.UpsertRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	rb, err := h.rubrics.Upsert(r.Context(), p, urlParam(r, "spaceID"), req)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, rb)
}

// GetRubric returns one rubric.
func (h *Handlers) GetRubric(w http.ResponseWriter, r *http.Request) {
	rb, err := h.rubrics.Get(r.Context(), urlParam(r, "spaceID"), urlParam(r, "rubricID"))
	if err != nil {
		writeDomainError(w, err, "rubric not found")
		return
	}
	writeJSON(w, http.StatusOK, rb)
}

// ListRubrics returns the space's rubrics.
func (h *Handlers) ListRubrics(w http.ResponseWriter, r *http.Request) {
	rubrics, err := h.rubrics.List(r.Context(), urlParam(r, "spaceID"), includeArchived(r))
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	if rubrics == nil {
		rubrics = []rubric.Rubric{}
	}
	writeJSON(w, http.StatusOK, rubrics)
}

// ArchiveRubric soft-deletes a rubric.
func (h *Handlers) ArchiveRubric(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	if err := h.rubrics.Archive(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "rubricID")); err != nil {
		writeDomainError(w, err, "rubric not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RateRubric submits a rating against a rubric.
func (h *Handlers) RateRubric(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[rubric.RateRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	rating, err := h.rubrics.Rate(r.Context(), p, urlParam(r, "spaceID"), urlParam(r, "rubricID"), req)
	if err != nil {
		writeDomainError(w, err, "rubric not found")
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}

// ListRubricRatings returns a rubric's submitted ratings.
func (h *Handlers) ListRubricRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.rubrics.ListRatings(r.Context(), urlParam(r, "spaceID"), urlParam(r, "rubricID"))
	if err != nil {
		writeDomainError(w, err, "rubric not found")
		return
	}
	if ratings == nil {
		ratings = []rubric.Rating{}
	}
	writeJSON(w, http.StatusOK, ratings)
}
