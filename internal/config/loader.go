package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, an optional YAML file named
// by BYTESPACE_CONFIG, and BYTESPACE_* environment variable overrides.
func Load() (Config, error) {
	return LoadFrom(os.Getenv("BYTESPACE_CONFIG"))
}

// LoadFrom is Load with an explicit config file path. An empty path skips
// the YAML layer entirely.
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "BYTESPACE_PORT")
	setString(&cfg.Server.CORSOrigin, "BYTESPACE_CORS_ORIGIN")

	setString(&cfg.Postgres.DSN, "BYTESPACE_POSTGRES_DSN")
	setInt32(&cfg.Postgres.MaxConns, "BYTESPACE_POSTGRES_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "BYTESPACE_POSTGRES_MIN_CONNS")

	setString(&cfg.NATS.URL, "BYTESPACE_NATS_URL")

	setString(&cfg.LLM.URL, "BYTESPACE_LLM_URL")
	setString(&cfg.LLM.MasterKey, "BYTESPACE_LLM_MASTER_KEY")
	setDuration(&cfg.LLM.Timeout, "BYTESPACE_LLM_TIMEOUT")

	setString(&cfg.S3.Bucket, "BYTESPACE_S3_BUCKET")
	setString(&cfg.S3.Region, "BYTESPACE_S3_REGION")
	setDuration(&cfg.S3.PresignExpiry, "BYTESPACE_S3_PRESIGN_EXPIRY")

	setString(&cfg.Auth.JWTSecret, "BYTESPACE_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "BYTESPACE_ACCESS_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "BYTESPACE_BCRYPT_COST")
	setString(&cfg.Auth.DefaultAdminUser, "BYTESPACE_DEFAULT_ADMIN_USER")
	setString(&cfg.Auth.DefaultAdminPass, "BYTESPACE_DEFAULT_ADMIN_PASS")

	setInt64(&cfg.Cache.L1MaxSizeMB, "BYTESPACE_CACHE_L1_MAX_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "BYTESPACE_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.TTL, "BYTESPACE_CACHE_TTL")

	setString(&cfg.Logging.Level, "BYTESPACE_LOG_LEVEL")
	setString(&cfg.Logging.Format, "BYTESPACE_LOG_FORMAT")
	setString(&cfg.Logging.Service, "BYTESPACE_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "BYTESPACE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "BYTESPACE_BREAKER_TIMEOUT")

	setFloat(&cfg.Rate.RequestsPerSecond, "BYTESPACE_RATE_RPS")
	setInt(&cfg.Rate.Burst, "BYTESPACE_RATE_BURST")

	setString(&cfg.Discord.WebhookURL, "BYTESPACE_DISCORD_WEBHOOK_URL")

	setString(&cfg.OTel.Endpoint, "BYTESPACE_OTEL_ENDPOINT")
	setBool(&cfg.OTel.Enabled, "BYTESPACE_OTEL_ENABLED")
}

func (c Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN must not be empty")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth JWT secret must not be empty (set BYTESPACE_JWT_SECRET)")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth bcrypt cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.AccessTokenExpiry <= 0 {
		return fmt.Errorf("access token expiry must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Rate.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requests per second must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
