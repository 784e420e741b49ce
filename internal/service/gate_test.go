package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/principal"
	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/service"
)

func TestGateAuthorize(t *testing.T) {
	private := &space.Space{ID: "acme", AdminUsernames: []string{"alice"}}
	public := &space.Space{ID: "sandbox", PublicWriteAllowed: true}

	tests := []struct {
		name    string
		p       *principal.Principal
		sp      *space.Space
		wantErr error
	}{
		{
			name: "anonymous write to public space allowed",
			p:    nil, sp: public,
		},
		{
			name: "anonymous write to private space unauthenticated",
			p:    nil, sp: private,
			wantErr: domain.ErrUnauthenticated,
		},
		{
			name:    "non-admin user denied",
			p:       &principal.Principal{UserID: "u2", Username: "bob"},
			sp:      private,
			wantErr: domain.ErrPermission,
		},
		{
			name: "listed space admin allowed",
			p:    &principal.Principal{UserID: "u1", Username: "alice"},
			sp:   private,
		},
		{
			name: "super admin allowed everywhere",
			p:    &principal.Principal{UserID: "u0", Username: "root", SuperAdmin: true},
			sp:   private,
		},
		{
			name: "api key for the target space allowed",
			p:    &principal.Principal{APIKeySpaceID: "acme"},
			sp:   private,
		},
		{
			name:    "api key for another space denied",
			p:       &principal.Principal{APIKeySpaceID: "other"},
			sp:      private,
			wantErr: domain.ErrPermission,
		},
	}

	gate := service.NewGate(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(context.Background(), tt.p, tt.sp)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Authorize() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
