package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMongo     = "mongo"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	StoreBackend string

	FirebaseProjectID       string
	FirebaseCredentialsFile string // empty means application default credentials
	DatabaseURL             string
	MongoURI                string
	MongoDatabase           string

	RedisAddr     string // empty keeps the dedup guard in-process
	RedisPassword string
	RedisDB       int

	TelegramToken   string // empty disables the admin bot
	AdminTelegramID int64

	LogLevel    string
	Environment string

	CronSpecSweep      string
	CronSpecGuardPrune string
	DedupTTL           time.Duration
	CheckTimeout       time.Duration
	WatchApprovals     bool
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.StoreBackend = strings.ToLower(envOr("STORE_BACKEND", BackendFirestore))
	switch cfg.StoreBackend {
	case BackendFirestore:
		cfg.FirebaseProjectID = os.Getenv("FIREBASE_PROJECT_ID")
		if cfg.FirebaseProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID is not set")
		}
		cfg.FirebaseCredentialsFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")
	case BackendPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case BackendMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is not set")
		}
		cfg.MongoDatabase = envOr("MONGO_DATABASE", "volunteers")
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want firestore, postgres or mongo)", cfg.StoreBackend)
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.RedisDB, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(envOr("ENVIRONMENT", "development"))

	cfg.CronSpecSweep = envOr("CRON_SPEC_SWEEP", "*/15 * * * *")          // Default: every 15 minutes
	cfg.CronSpecGuardPrune = envOr("CRON_SPEC_GUARD_PRUNE", "0 * * * *") // Default: hourly

	cfg.DedupTTL, err = time.ParseDuration(envOr("DEDUP_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEDUP_TTL: %w", err)
	}
	cfg.CheckTimeout, err = time.ParseDuration(envOr("CHECK_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECK_TIMEOUT: %w", err)
	}

	cfg.WatchApprovals, err = strconv.ParseBool(envOr("WATCH_APPROVALS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid WATCH_APPROVALS: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
