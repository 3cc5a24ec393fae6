package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	JWTPrivateKeyPEM  string
	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool

	RefreshTokenPepper string
	MetadataPepper     string

	Argon2MemoryKiB   int
	Argon2Time        int
	Argon2Parallelism int

	AccessTokenTTL  time.Duration
	IdempotencyTTL  time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Tokens struct {
		KeyID              string `yaml:"key_id"`
		AccessTTLMinutes   int    `yaml:"access_ttl_minutes"`
		RefreshTokenPepper string `yaml:"refresh_token_pepper"`
	} `yaml:"tokens"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "identity-service",
		HTTPPort:          8080,
		JWTKeyID:          "identity-key-1",
		AllowEphemeralJWT: true,
		Argon2MemoryKiB:   19456,
		Argon2Time:        3,
		Argon2Parallelism: 1,
		AccessTokenTTL:    15 * time.Minute,
		IdempotencyTTL:    10 * time.Minute,
		LoginRateLimit:    10,
		LoginRateWindow:   60 * time.Second,
		MaxDBConns:        20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Tokens.KeyID != "" {
			cfg.JWTKeyID = f.Tokens.KeyID
		}
		if f.Tokens.AccessTTLMinutes > 0 {
			cfg.AccessTokenTTL = time.Duration(f.Tokens.AccessTTLMinutes) * time.Minute
		}
		if f.Tokens.RefreshTokenPepper != "" {
			cfg.RefreshTokenPepper = f.Tokens.RefreshTokenPepper
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTPrivateKeyPEM = envOrDefault("JWT_PRIVATE_KEY_PEM", cfg.JWTPrivateKeyPEM)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.RefreshTokenPepper = envOrDefault("REFRESH_TOKEN_PEPPER", cfg.RefreshTokenPepper)
	cfg.MetadataPepper = envOrDefault("METADATA_PEPPER", cfg.MetadataPepper)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.Argon2MemoryKiB = envInt("ARGON2_MEMORY_KIB", cfg.Argon2MemoryKiB)
	cfg.Argon2Time = envInt("ARGON2_TIME", cfg.Argon2Time)
	cfg.Argon2Parallelism = envInt("ARGON2_PARALLELISM", cfg.Argon2Parallelism)
	cfg.LoginRateLimit = envInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.IdempotencyTTL = time.Duration(envInt("IDEMPOTENCY_TTL_MINUTES", int(cfg.IdempotencyTTL.Minutes()))) * time.Minute
	cfg.LoginRateWindow = time.Duration(envInt("LOGIN_RATE_WINDOW_SECONDS", int(cfg.LoginRateWindow.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTPrivateKeyPEM == "" || cfg.JWTPublicKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PRIVATE_KEY_PEM or JWT_PUBLIC_KEY_PEM")
	}
	if cfg.RefreshTokenPepper == "" {
		return Config{}, fmt.Errorf("missing REFRESH_TOKEN_PEPPER")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
