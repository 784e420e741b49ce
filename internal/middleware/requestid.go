// Package middleware provides HTTP middleware for Bytespace.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bytespace-io/bytespace/internal/logger"
)

const headerRequestID = "X-Request-ID"

// maxRequestIDLen bounds caller-supplied ids so log lines stay sane.
const maxRequestIDLen = 64

// RequestID adopts the caller's X-Request-ID or mints one, then carries
// it on the context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
