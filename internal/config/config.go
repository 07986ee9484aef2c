package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	AutoMigrate      bool
	ServerPort       string
	BaseURL          string
	FrontendURL      string
	EnableHSTS       bool
	RequestTimeout   time.Duration
	MaxRequestBytes  int64
	SupabaseURL      string
	SupabaseAnonKey  string
	AIProvider       string
	AIModel          string
	AIBaseURL        string
	GeminiAPIKey     string
	OpenAIKey        string
	ResponderPersist bool
	RedisURL         string
	SendDebounce     time.Duration
	SessionIdleTTL   time.Duration
	RabbitMQURL      string
	RabbitMQPrefetch int
	QueueMealPlans   bool
	DLQGCInterval    time.Duration
	DLQRetention     time.Duration
	PreferencesDir   string
	LogFormat        string
	WorkerDebugMode  bool
	ServerDebugMode  bool
	OTELEnabled      bool
	OTELEndpoint     string
	OTELSampleRatio  float64
	MetricsEnabled   bool
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none are
// named) into the environment. Variables already set win. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AutoMigrate:      getEnvBool("AUTO_MIGRATE", false),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		EnableHSTS:       getEnvBool("ENABLE_HSTS", false),
		RequestTimeout:   getEnvDuration("REQUEST_TIMEOUT", 120*time.Second),
		MaxRequestBytes:  int64(getEnvInt("MAX_REQUEST_BYTES", 1<<20)),
		SupabaseURL:      strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:  getEnv("SUPABASE_ANON_KEY", ""),
		AIProvider:       getEnv("AI_PROVIDER", "gemini"),
		AIModel:          getEnv("AI_MODEL", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		ResponderPersist: getEnvBool("AI_RESPONDER_PERSIST", false),
		RedisURL:         getEnv("REDIS_URL", ""),
		SendDebounce:     getEnvDuration("SEND_DEBOUNCE", 500*time.Millisecond),
		SessionIdleTTL:   getEnvDuration("SESSION_IDLE_TTL", 2*time.Hour),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		QueueMealPlans:   getEnvBool("QUEUE_MEAL_PLANS", false),
		DLQGCInterval:    getEnvDuration("DLQ_GC_INTERVAL", time.Hour),
		DLQRetention:     getEnvDuration("DLQ_RETENTION", 24*time.Hour),
		PreferencesDir:   getEnv("PREFERENCES_DIR", ""),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		WorkerDebugMode:  getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:  getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELSampleRatio:  getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.QueueMealPlans && cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required when QUEUE_MEAL_PLANS is enabled")
	}

	return cfg, nil
}

// AIAPIKey returns the API key for the configured provider.
func (c *Config) AIAPIKey() string {
	if c.AIProvider == "openai" {
		return c.OpenAIKey
	}
	return c.GeminiAPIKey
}

// SupabaseIssuer is the expected "iss" claim on Supabase access tokens.
func (c *Config) SupabaseIssuer() string {
	if c.SupabaseURL == "" {
		return ""
	}
	return c.SupabaseURL + "/auth/v1"
}

// SupabaseJWKSURL is where the project's signing keys are published.
func (c *Config) SupabaseJWKSURL() string {
	if c.SupabaseURL == "" {
		return ""
	}
	return c.SupabaseURL + "/auth/v1/.well-known/jwks.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
