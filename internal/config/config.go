package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// JWT
	JWTSecret           string
	JWTExpirationDur    time.Duration
	RequireSessionToken bool

	// Identity provider
	FirebaseCredentialsFile string

	// Pipeline
	PipelineAPIKey   string
	SnapshotSchedule string

	// Market data
	QuoteTimeout         time.Duration
	QuoteRateLimit       float64
	ValuationConcurrency int
	NewsTimezone         string

	// Generative AI
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	// Mail
	EmailUser        string
	EmailPassword    string
	SMTPHost         string
	SMTPPort         int
	ContactRecipient string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		JWTSecret:           getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		JWTExpirationDur:    getDuration("JWT_EXPIRES_IN", 24*time.Hour),
		RequireSessionToken: getBool("REQUIRE_SESSION_TOKEN", false),

		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),

		PipelineAPIKey:   getEnv("PIPELINE_API_KEY", ""),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "0 * * * *"),

		QuoteTimeout:         getDuration("QUOTE_TIMEOUT", 10*time.Second),
		QuoteRateLimit:       getFloat("QUOTE_RATE_LIMIT", 5),
		ValuationConcurrency: getInt("VALUATION_CONCURRENCY", 4),
		NewsTimezone:         getEnv("NEWS_TIMEZONE", "Local"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AITimeout:    getDuration("AI_TIMEOUT", 60*time.Second),

		EmailUser:        getEnv("EMAIL_USER", ""),
		EmailPassword:    getEnv("EMAIL_PASSWORD", ""),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getInt("SMTP_PORT", 587),
		ContactRecipient: getEnv("CONTACT_RECIPIENT", ""),
	}

	if config.ContactRecipient == "" {
		config.ContactRecipient = config.EmailUser
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the active configuration. Used by tests that need a known
// signing secret without touching the environment.
func Set(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, raw, defaultValue)
		return defaultValue
	}
	return f
}

func getBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}
