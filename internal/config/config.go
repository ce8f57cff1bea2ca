package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	DatabaseURL     string
	DBMaxConns      int32
	JWTSecret       string
	JWTIssuer       string
	JWTTTL          time.Duration
	CORSOrigins     []string
	PasswordHasher  string
	BcryptCost      int
	DefaultPageSize int
	MaxPageSize     int
	RateLimitRPS    float64
	RateLimitBurst  int
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:            fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:      int32(positiveInt("DB_MAX_CONNS", 10)),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:       fallback(os.Getenv("JWT_ISSUER"), "budget-backend"),
		JWTTTL:          time.Duration(positiveInt("JWT_TTL_MINUTES", 60)) * time.Minute,
		CORSOrigins:     parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		PasswordHasher:  strings.ToLower(fallback(os.Getenv("PASSWORD_HASHER"), "bcrypt")),
		BcryptCost:      positiveInt("BCRYPT_COST", 10),
		DefaultPageSize: positiveInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     positiveInt("MAX_PAGE_SIZE", 100),
		RateLimitRPS:    positiveFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  positiveInt("RATE_LIMIT_BURST", 10),
		LogLevel:        fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:       fallback(os.Getenv("LOG_FORMAT"), "text"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.PasswordHasher {
	case "bcrypt", "argon2id":
	default:
		return Config{}, fmt.Errorf("PASSWORD_HASHER must be bcrypt or argon2id, got %q", cfg.PasswordHasher)
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func positiveInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
		return v
	}
	return def
}

func positiveFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil && v > 0 {
		return v
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
