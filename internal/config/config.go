package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// JWTSecret verifies bearer tokens used for audit attribution.
	JWTSecret string

	// Env is "dev" (default) or "prod".
	Env string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// ImportChunkSize is the number of import rows processed concurrently (default 10).
	ImportChunkSize int

	// ImportRatePerMinute caps import requests per client IP (default 6).
	ImportRatePerMinute int

	// ImportMaxBodyBytes caps the import request body size (default 8 MiB).
	ImportMaxBodyBytes int64

	// OrphanSweepCron is the cron expression for the orphan-asset sweep
	// (default "@hourly"). Empty disables the sweep.
	OrphanSweepCron string

	// CORSAllowedOrigins is the list of origins allowed for CORS, set via
	// CORS_ALLOWED_ORIGINS (comma-separated). Empty means same-origin only.
	CORSAllowedOrigins []string
}

func Load() Config {
	// A missing .env file is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "itamdb"),
		DBUser: getEnv("DB_USER", "itam"),
		DBPass: getEnv("DB_PASS", "itam"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		Env:       getEnv("ENV", "dev"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ImportChunkSize:     getEnvInt("IMPORT_CHUNK_SIZE", 10),
		ImportRatePerMinute: getEnvInt("IMPORT_RATE_PER_MINUTE", 6),
		ImportMaxBodyBytes:  int64(getEnvInt("IMPORT_MAX_BODY_BYTES", 8<<20)),

		OrphanSweepCron: getEnv("ORPHAN_SWEEP_CRON", "@hourly"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
