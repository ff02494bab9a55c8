package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

type Config struct {
	// Server
	ServerPort string
	ServerEnv  string
	ServerHost string // Swagger host

	// Database
	DatabaseURL string

	// JWT
	JWTSecretKey              string
	JWTAccessTokenExpireMin   int
	JWTRefreshTokenExpireDays int

	// Internal API (freshness refresh, called by the write-side batch)
	InternalAPIKey string

	// Scoring
	ScoreWeightFresh    float64
	ScoreWeightRich     float64
	FreshnessWindowDays int

	// SigNoz
	SigNozEndpoint string
}

// weightSumTolerance is how far SCORE_W_FRESH + SCORE_W_RICH may drift from 1.0
const weightSumTolerance = 1e-3

func Load() *Config {
	return &Config{
		// Server
		ServerPort: getEnv("SERVER_PORT", "3000"),
		ServerEnv:  getEnv("SERVER_ENV", "development"),
		ServerHost: getEnv("SERVER_HOST", "localhost:3000"),

		// Database - DATABASE_URL wins, otherwise built from individual env vars
		DatabaseURL: getDatabaseURL(),

		// JWT
		JWTSecretKey:              getEnv("JWT_SECRET_KEY", ""),
		JWTAccessTokenExpireMin:   getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 15),
		JWTRefreshTokenExpireDays: getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 7),

		// Internal API
		InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),

		// Scoring
		ScoreWeightFresh:    getEnvAsFloat("SCORE_W_FRESH", 0.6),
		ScoreWeightRich:     getEnvAsFloat("SCORE_W_RICH", 0.4),
		FreshnessWindowDays: getEnvAsInt("FRESHNESS_WINDOW_DAYS", 180),

		// SigNoz
		SigNozEndpoint: getEnv("SIGNOZ_ENDPOINT", ""),
	}
}

// Validate enforces boot-time invariants. A violation must abort startup;
// the service never normalizes a bad configuration silently.
func (c *Config) Validate() error {
	if sum := c.ScoreWeightFresh + c.ScoreWeightRich; math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("SCORE_W_FRESH + SCORE_W_RICH must sum to 1.0, got %g", sum)
	}
	if c.ScoreWeightFresh < 0 || c.ScoreWeightRich < 0 {
		return fmt.Errorf("score weights must be non-negative (fresh=%g, rich=%g)",
			c.ScoreWeightFresh, c.ScoreWeightRich)
	}
	if c.FreshnessWindowDays <= 0 {
		return fmt.Errorf("FRESHNESS_WINDOW_DAYS must be positive, got %d", c.FreshnessWindowDays)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDatabaseURL returns DATABASE_URL or builds it from individual env vars
func getDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	// Individual env vars match the k8s secret key names
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "")
	dbname := getEnv("POSTGRES_DB", "gymdir")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, dbname, sslmode)
}
