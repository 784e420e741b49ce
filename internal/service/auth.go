// Package service contains the application services that sit between the
// HTTP adapter and the ports.
package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bytespace-io/bytespace/internal/config"
	"github.com/bytespace-io/bytespace/internal/domain"
	"github.com/bytespace-io/bytespace/internal/domain/space"
	"github.com/bytespace-io/bytespace/internal/domain/user"
	"github.com/bytespace-io/bytespace/internal/port/database"
)

const (
	tokenAudience = "bytespace"
	tokenIssuer   = "bytespace-core"
)

// AuthService handles login, session tokens, and space API keys.
type AuthService struct {
	store  database.Store
	cfg    *config.Auth
	secret []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(store database.Store, cfg *config.Auth) *AuthService {
	return &AuthService{
		store:  store,
		cfg:    cfg,
		secret: []byte(cfg.JWTSecret),
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req *user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		SuperAdmin:   req.SuperAdmin,
		Enabled:      true,
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login authenticates a user and issues an access token.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !u.Enabled {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}

	accessToken, err := s.IssueAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &user.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		User:        *u,
	}, nil
}

// ValidateAccessToken verifies a session token and returns its claims.
func (s *AuthService) ValidateAccessToken(tokenStr string) (*user.TokenClaims, error) {
	return s.verifyJWT(tokenStr)
}

// ValidateAPIKey resolves a raw space API key to the space it belongs to.
// The last-used timestamp is updated best-effort.
func (s *AuthService) ValidateAPIKey(ctx context.Context, rawKey string) (string, error) {
	if !strings.HasPrefix(rawKey, space.APIKeyPrefix) {
		return "", fmt.Errorf("%w: invalid api key", domain.ErrUnauthenticated)
	}

	keyHash := hashSHA256(rawKey)
	spaceID, err := s.store.GetSpaceIDByAPIKeyHash(ctx, keyHash)
	if err != nil {
		return "", fmt.Errorf("%w: invalid api key", domain.ErrUnauthenticated)
	}

	if err := s.store.TouchSpaceAPIKey(ctx, keyHash, time.Now()); err != nil {
		slog.Warn("failed to update api key last-used timestamp", "space_id", spaceID, "error", err)
	}
	return spaceID, nil
}

// CreateSpaceAPIKey generates a new API key scoped to a space. The plaintext
// key is returned exactly once; only its SHA-256 hash is persisted.
func (s *AuthService) CreateSpaceAPIKey(ctx context.Context, spaceID, name, createdBy string) (*space.CreateAPIKeyResponse, error) {
	if name == "" {
		return nil, domain.Validationf("api key name is required")
	}

	rawKey, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	plainKey := space.APIKeyPrefix + rawKey

	key := &space.APIKey{
		ID:        uuid.NewString(),
		SpaceID:   spaceID,
		Name:      name,
		Prefix:    plainKey[:12],
		KeyHash:   hashSHA256(plainKey),
		CreatedBy: createdBy,
	}

	if err := s.store.CreateSpaceAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}

	return &space.CreateAPIKeyResponse{
		APIKey:   *key,
		PlainKey: plainKey,
	}, nil
}

// ListSpaceAPIKeys returns the API keys of a space (hashes only).
func (s *AuthService) ListSpaceAPIKeys(ctx context.Context, spaceID string) ([]space.APIKey, error) {
	return s.store.ListSpaceAPIKeys(ctx, spaceID)
}

// DeleteSpaceAPIKey removes an API key from a space.
func (s *AuthService) DeleteSpaceAPIKey(ctx context.Context, spaceID, keyID string) error {
	return s.store.DeleteSpaceAPIKey(ctx, spaceID, keyID)
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.store.GetUser(ctx, id)
}

// Refresh issues a fresh access token for an already-authenticated user.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*user.LoginResponse, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session", domain.ErrUnauthenticated)
	}
	if !u.Enabled {
		return nil, fmt.Errorf("%w: account is disabled", domain.ErrUnauthenticated)
	}

	accessToken, err := s.IssueAccessToken(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &user.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		User:        *u,
	}, nil
}

// ListUsers returns all registered users.
func (s *AuthService) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// SetPassword replaces a user's password hash.
func (s *AuthService) SetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Validationf("password must be at least 8 characters")
	}

	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// SeedDefaultAdmin creates the initial super-admin user if no users exist.
// It does nothing when DefaultAdminPass is unset.
func (s *AuthService) SeedDefaultAdmin(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 || s.cfg.DefaultAdminPass == "" {
		return nil
	}

	_, err = s.Register(ctx, &user.CreateRequest{
		Username:   s.cfg.DefaultAdminUser,
		Name:       "Admin",
		Password:   s.cfg.DefaultAdminPass,
		SuperAdmin: true,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	slog.Info("seeded default admin user", "username", s.cfg.DefaultAdminUser)
	return nil
}

// --- JWT implementation (HS256 with stdlib) ---

// jwtHeader is the fixed base64url-encoded header for HS256.
var jwtHeader = base64URLEncode([]byte(`{"alg":"HS256","typ":"JWT"}`))

// IssueAccessToken signs a session token for the given user.
func (s *AuthService) IssueAccessToken(u *user.User) (string, error) {
	now := time.Now()
	claims := user.TokenClaims{
		UserID:     u.ID,
		Username:   u.Username,
		Name:       u.Name,
		SuperAdmin: u.SuperAdmin,
		IssuedAt:   now.Unix(),
		Expiry:     now.Add(s.cfg.AccessTokenExpiry).Unix(),
		JTI:        uuid.NewString(),
		Audience:   tokenAudience,
		Issuer:     tokenIssuer,
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}

	signingInput := jwtHeader + "." + base64URLEncode(payload)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	sig := base64URLEncode(mac.Sum(nil))

	return signingInput + "." + sig, nil
}

func (s *AuthService) verifyJWT(tokenStr string) (*user.TokenClaims, error) {
	parts := strings.SplitN(tokenStr, ".", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrUnauthenticated)
	}

	signingInput := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))
	expectedSig := base64URLEncode(mac.Sum(nil))

	if !hmac.Equal([]byte(parts[2]), []byte(expectedSig)) {
		return nil, fmt.Errorf("%w: invalid signature", domain.ErrUnauthenticated)
	}

	payload, err := base64URLDecode(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrUnauthenticated)
	}

	var claims user.TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: malformed claims", domain.ErrUnauthenticated)
	}

	if time.Now().Unix() > claims.Expiry {
		return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
	}
	if claims.Audience != tokenAudience {
		return nil, fmt.Errorf("%w: invalid token audience", domain.ErrUnauthenticated)
	}
	if claims.Issuer != tokenIssuer {
		return nil, fmt.Errorf("%w: invalid token issuer", domain.ErrUnauthenticated)
	}

	return &claims, nil
}

// --- Helpers ---

func base64URLEncode(data []byte) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString(data), "=")
}

func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}

func hashSHA256(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
