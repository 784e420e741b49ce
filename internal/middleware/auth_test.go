package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytespace-io/bytespace/internal/config"
	"github.com/bytespace-io/bytespace/internal/domain/user"
	"github.com/bytespace-io/bytespace/internal/middleware"
	"github.com/bytespace-io/bytespace/internal/service"
)

func newTestAuthSvc() *service.AuthService {
	cfg := config.Auth{
		JWTSecret:         "test-secret-key-for-middleware",
		AccessTokenExpiry: 15 * time.Minute,
		BcryptCost:        4,
	}
	// nil store is fine: these tests only exercise token parsing and the
	// api-key prefix check, neither of which reaches the database.
	return service.NewAuthService(nil, &cfg)
}

func TestAuth_NoCredentials_PassesThroughAnonymous(t *testing.T) {
	svc := newTestAuthSvc()
	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := middleware.PrincipalFromContext(r.Context()); p != nil {
			t.Errorf("expected nil principal for anonymous request, got %+v", p)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces/acme/bytes", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_InvalidBearerToken_Returns401(t *testing.T) {
	svc := newTestAuthSvc()
	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler should not run with invalid credentials")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_MalformedAuthorizationHeader_Returns401(t *testing.T) {
	svc := newTestAuthSvc()
	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_InvalidAPIKeyPrefix_Returns401(t *testing.T) {
	svc := newTestAuthSvc()
	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/spaces/acme/bytes", http.NoBody)
	req.Header.Set("X-API-Key", "wrong-prefix-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_ValidBearerToken_AttachesPrincipal(t *testing.T) {
	svc := newTestAuthSvc()
	token, err := svc.IssueAccessToken(&user.User{
		ID:         "u-1",
		Username:   "alice",
		SuperAdmin: true,
	})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := middleware.PrincipalFromContext(r.Context())
		if p == nil {
			t.Fatal("expected principal in context")
		}
		if p.Username != "alice" || !p.SuperAdmin {
			t.Errorf("principal = %+v, want alice/super-admin", p)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestAuth_ExpiredToken_Returns401(t *testing.T) {
	cfg := config.Auth{
		JWTSecret:         "test-secret-key-for-middleware",
		AccessTokenExpiry: -time.Minute,
		BcryptCost:        4,
	}
	svc := service.NewAuthService(nil, &cfg)

	token, err := svc.IssueAccessToken(&user.User{ID: "u-1", Username: "alice"})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	handler := middleware.Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spaces", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	handler := middleware.RequireSuperAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		ctxSetup   func(r *http.Request) *http.Request
		wantStatus int
	}{
		{
			name:       "anonymous gets 401",
			ctxSetup:   func(r *http.Request) *http.Request { return r },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "regular user gets 403",
			ctxSetup: func(r *http.Request) *http.Request {
				ctx := middleware.WithPrincipal(r.Context(), testPrincipal("bob", false))
				return r.WithContext(ctx)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "super admin passes",
			ctxSetup: func(r *http.Request) *http.Request {
				ctx := middleware.WithPrincipal(r.Context(), testPrincipal("root", true))
				return r.WithContext(ctx)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/spaces", http.NoBody)
			req = tt.ctxSetup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
