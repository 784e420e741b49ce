package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsRequireSecret(t *testing.T) {
	if _, err := LoadFrom(""); err == nil {
		t.Fatal("expected error without JWT secret, got nil")
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: "9090"
auth:
  jwt_secret: "yaml-secret"
  access_token_expiry: 2h
cache:
  ttl: 10m
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenExpiry != 2*time.Hour {
		t.Errorf("access token expiry = %v, want 2h", cfg.Auth.AccessTokenExpiry)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache TTL = %v, want 10m", cfg.Cache.TTL)
	}
	// Defaults survive where the file is silent.
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("postgres max conns = %d, want default 15", cfg.Postgres.MaxConns)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: "9090"
auth:
  jwt_secret: "yaml-secret"
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("BYTESPACE_PORT", "7070")
	t.Setenv("BYTESPACE_JWT_SECRET", "env-secret")
	t.Setenv("BYTESPACE_RATE_RPS", "25")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, want env override 7070", cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("jwt secret = %q, want env override", cfg.Auth.JWTSecret)
	}
	if cfg.Rate.RequestsPerSecond != 25 {
		t.Errorf("rate rps = %v, want 25", cfg.Rate.RequestsPerSecond)
	}
}

func TestValidateRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("BYTESPACE_JWT_SECRET", "s")
	t.Setenv("BYTESPACE_BCRYPT_COST", "99")
	if _, err := LoadFrom(""); err == nil {
		t.Fatal("expected error for bcrypt cost 99, got nil")
	}
}
