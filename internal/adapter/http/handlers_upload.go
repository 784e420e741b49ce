package http

import (
	"net/http"

	"github.com/bytespace-io/bytespace/internal/middleware"
)

type presignRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// PresignUpload returns a presigned PUT URL for a direct-to-bucket upload.
func (h *Handlers) PresignUpload(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[presignRequest](w, r)
	if !ok {
		return
	}

	p := middleware.PrincipalFromContext(r.Context())
	res, err := h.uploads.Presign(r.Context(), p, urlParam(r, "spaceID"), req.Filename, req.ContentType)
	if err != nil {
		writeDomainError(w, err, "space not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
