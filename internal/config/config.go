package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Marketplace endpoints
	BaseURL  string
	IndexURL string

	// Scope
	YearCutoff int

	// Run budget and pacing
	MaxRuntime      time.Duration
	ListingDelay    time.Duration
	ClickSettle     time.Duration
	NavigateTimeout time.Duration

	// Pagination stopping policy
	MaxPageClicks    int
	FailureThreshold int

	// Recency gate tuning. These were hand-tuned against live pages, so
	// they stay configurable rather than baked in.
	RetentionDays      int
	MostlyOldFraction  float64
	StalePageThreshold int
	MinDateSamples     int
	MaxDateSamples     int

	// Storage
	DBPath     string
	OutputPath string

	// Decoder
	NHTSABaseURL string

	// API server
	Port string

	ChromeBin string
}

// Load reads the .env file (if present) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return &Config{
		BaseURL:  getEnv("BAT_BASE_URL", "https://bringatrailer.com"),
		IndexURL: getEnv("BAT_INDEX_URL", "https://bringatrailer.com/porsche/911/"),

		YearCutoff: getEnvInt("YEAR_CUTOFF", 1981),

		MaxRuntime:      time.Duration(getEnvInt("MAX_RUNTIME_MINUTES", 45)) * time.Minute,
		ListingDelay:    time.Duration(getEnvInt("LISTING_DELAY_SECONDS", 4)) * time.Second,
		ClickSettle:     time.Duration(getEnvInt("CLICK_SETTLE_SECONDS", 4)) * time.Second,
		NavigateTimeout: time.Duration(getEnvInt("NAVIGATE_TIMEOUT_SECONDS", 15)) * time.Second,

		MaxPageClicks:    getEnvInt("MAX_PAGE_CLICKS", 25),
		FailureThreshold: getEnvInt("FAILURE_THRESHOLD", 3),

		RetentionDays:      getEnvInt("RETENTION_DAYS", 365),
		MostlyOldFraction:  getEnvFloat("MOSTLY_OLD_FRACTION", 0.70),
		StalePageThreshold: getEnvInt("STALE_PAGE_THRESHOLD", 3),
		MinDateSamples:     getEnvInt("MIN_DATE_SAMPLES", 5),
		MaxDateSamples:     getEnvInt("MAX_DATE_SAMPLES", 100),

		DBPath:     getEnv("DB_PATH", "./data/inventory.db"),
		OutputPath: getEnv("OUTPUT_PATH", "bat-porsche-911-listings.json"),

		NHTSABaseURL: getEnv("NHTSA_API_BASE", "https://vpic.nhtsa.dot.gov/api/vehicles"),

		Port: getEnv("PORT", "8080"),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
