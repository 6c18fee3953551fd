// Package config loads the operator-facing configuration for the sync and
// backfill tools from the environment (optionally seeded from a .env file).
// Components receive the pieces they need through constructors; nothing
// reads the environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the CLIs need to talk to GHL, Meta and
// Firestore and to apply the product's counting rules.
type Config struct {
	// Firestore / Firebase
	ProjectID       string
	CredentialsFile string // optional; ADC is used when empty

	// GoHighLevel
	GHLBaseURL    string
	GHLAPIKey     string
	GHLLocationID string
	GHLPageSize   int

	// Meta Ads
	MetaBaseURL     string
	MetaAccessToken string
	MetaAdAccountID string

	// Aggregation rules
	ReportingLocation   *time.Location
	RetentionWindow     time.Duration
	DefaultDepositCents int64
	CashStageWords      []string

	// Driver behavior
	CheckpointEvery int
	CheckpointDir   string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectID:       os.Getenv("GOOGLE_CLOUD_PROJECT"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GHLBaseURL:      getEnv("GHL_BASE_URL", "https://rest.gohighlevel.com/v1"),
		GHLAPIKey:       os.Getenv("GHL_API_KEY"),
		GHLLocationID:   os.Getenv("GHL_LOCATION_ID"),
		GHLPageSize:     getEnvInt("GHL_PAGE_SIZE", 100),
		MetaBaseURL:     getEnv("META_BASE_URL", "https://graph.facebook.com/v19.0"),
		MetaAccessToken: os.Getenv("META_ACCESS_TOKEN"),
		MetaAdAccountID: os.Getenv("META_AD_ACCOUNT_ID"),
		RetentionWindow: getEnvDuration("RETENTION_WINDOW", 180*24*time.Hour),
		CheckpointEvery: getEnvInt("CHECKPOINT_EVERY", 200),
		CheckpointDir:   getEnv("CHECKPOINT_DIR", ".checkpoints"),
	}

	// Zero-value deposits and cash events substitute this amount; the CRM
	// frequently omits the value field on those stages.
	cfg.DefaultDepositCents = int64(getEnvInt("DEFAULT_DEPOSIT_CENTS", 50000))

	tz := getEnv("REPORTING_TZ", "America/New_York")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORTING_TZ %q: %w", tz, err)
	}
	cfg.ReportingLocation = loc

	if words := os.Getenv("CASH_STAGE_WORDS"); words != "" {
		cfg.CashStageWords = splitCSV(words)
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
