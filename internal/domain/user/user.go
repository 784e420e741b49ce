// Package user defines the user domain model and session token claims.
package user

import (
	"time"

	"github.com/bytespace-io/bytespace/internal/domain"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	SuperAdmin   bool      `json:"isSuperAdmin"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest holds the fields required to register a user.
type CreateRequest struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	SuperAdmin bool   `json:"isSuperAdmin"`
}

// Validate checks required fields eagerly.
func (r *CreateRequest) Validate() error {
	if r.Username == "" {
		return domain.Validationf("username is required")
	}
	if len(r.Password) < 8 {
		return domain.Validationf("password must be at least 8 characters")
	}
	return nil
}

// LoginRequest is the credential payload for /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks required fields eagerly.
func (r *LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return domain.Validationf("username and password are required")
	}
	return nil
}

// LoginResponse carries the access token issued on successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// TokenClaims is the decoded session token payload.
type TokenClaims struct {
	UserID     string `json:"sub"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	SuperAdmin bool   `json:"super_admin"`
	IssuedAt   int64  `json:"iat"`
	Expiry     int64  `json:"exp"`
	JTI        string `json:"jti"`
	Audience   string `json:"aud"`
	Issuer     string `json:"iss"`
}
