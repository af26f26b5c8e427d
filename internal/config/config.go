// Package config loads the application configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// placeholderAPIKey is the value shipped in the sample .env; it never works.
const placeholderAPIKey = "sua_chave_aqui_cole_a_chave_que_vc_gerou"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	AI        AIConfig
	Auth      AuthConfig
	Quota     QuotaConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig selects the SQL dialect and its connection string.
type DatabaseConfig struct {
	Driver string // mysql, postgres or sqlite
	DSN    string
}

type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Configured reports whether a usable API key was supplied.
func (a AIConfig) Configured() bool {
	return a.APIKey != "" && a.APIKey != placeholderAPIKey
}

type AuthConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

// QuotaConfig holds the daily generation limits per tier.
type QuotaConfig struct {
	AnonymousDaily int
	FreeDaily      int
}

type CacheConfig struct {
	Size          int
	SweepInterval time.Duration
}

// RateLimitConfig is the per-IP token bucket applied to routes outside the
// daily quota (idea improvement, feedback and auth).
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from .env and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		log.Println("WARNING: Could not find .env file. Relying on system environment variables.")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5000", "http://127.0.0.1:5000", "http://localhost:8000", "http://127.0.0.1:8000"}),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:    getEnv("DB_DSN", "contentai.db"),
		},
		AI: AIConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getEnvAsDuration("AI_TIMEOUT", 20*time.Second),
		},
		Auth: AuthConfig{
			TokenTTL: getEnvAsDuration("JWT_TTL", time.Hour),
		},
		Quota: QuotaConfig{
			AnonymousDaily: getEnvAsInt("QUOTA_ANONYMOUS_DAILY", 3),
			FreeDaily:      getEnvAsInt("QUOTA_FREE_DAILY", 10),
		},
		Cache: CacheConfig{
			Size:          getEnvAsInt("CACHE_SIZE", 100),
			SweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", time.Hour),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		// Tokens will not survive a restart.
		log.Println("WARNING: JWT_SECRET_KEY is not set. Generating an ephemeral signing key.")
		generated, err := randomSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
	}
	cfg.Auth.Secret = []byte(secret)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if c.Quota.AnonymousDaily <= 0 || c.Quota.FreeDaily <= 0 {
		return fmt.Errorf("daily quotas must be positive")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("CACHE_SWEEP_INTERVAL must be positive")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
