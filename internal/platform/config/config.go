package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// RateLimit uses the ulule/limiter formatted-rate syntax, e.g. "100-M".
	RateLimit string

	// ChainVerifyBatchSize bounds one repository round trip of the chain
	// verification walk.
	ChainVerifyBatchSize int

	// IdempotencyRetention is how long Idempotency-Key reservations are kept.
	IdempotencyRetention time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if
// present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "accounted-app")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CHAIN_VERIFY_BATCH_SIZE", 500)
	viper.SetDefault("IDEMPOTENCY_RETENTION", "720h") // 30 days

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.ChainVerifyBatchSize = viper.GetInt("CHAIN_VERIFY_BATCH_SIZE")

	retentionStr := viper.GetString("IDEMPOTENCY_RETENTION")
	retention, err := time.ParseDuration(retentionStr)
	if err != nil {
		retention = 30 * 24 * time.Hour
		if retentionStr != "" {
			log.Printf("Warning: Invalid value for IDEMPOTENCY_RETENTION (%q). Defaulting to %s.\n", retentionStr, retention)
		}
	}
	cfg.IdempotencyRetention = retention

	return cfg, nil
}
