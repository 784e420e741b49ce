package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytespace-io/bytespace/internal/domain"
)

func TestWriteDomainErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.Validationf("name is required"), http.StatusBadRequest},
		{"unauthenticated", fmt.Errorf("space x: %w", domain.ErrUnauthenticated), http.StatusUnauthorized},
		{"permission", fmt.Errorf("nope: %w", domain.ErrPermission), http.StatusForbidden},
		{"not found", fmt.Errorf("row: %w", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("stale: %w", domain.ErrConflict), http.StatusConflict},
		{"upstream", fmt.Errorf("llm: %w", domain.ErrUpstream), http.StatusBadGateway},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeDomainError(w, tt.err, "resource not found")
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}

			var body errorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %q", w.Body.String())
			}
			if body.Message == "" {
				t.Fatal("error body has no message")
			}
		})
	}
}

func TestValidationMessagePassedThrough(t *testing.T) {
	w := httptest.NewRecorder()
	writeDomainError(w, domain.Validationf("byte name is required"), "x")

	var body errorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Message != "byte name is required" {
		t.Fatalf("message = %q, want the validation detail", body.Message)
	}
}

func TestInternalErrorIsOpaque(t *testing.T) {
	w := httptest.NewRecorder()
	writeInternalError(w, fmt.Errorf("pq: password authentication failed for user"))

	var body errorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Message != "internal server error" {
		t.Fatalf("internal detail leaked to client: %q", body.Message)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/spaces", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatal("preflight missing allow-headers")
	}
}
