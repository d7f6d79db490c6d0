package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Supabase SupabaseConfig
	District DistrictConfig
	LLM      LLMConfig
	Keywords KeywordsConfig
	Logging  LoggingConfig
	Cache    CacheConfig
	Sessions SessionConfig
	Metrics  MetricsConfig
}

// KeywordsConfig points at an optional external keyword table file.
// Empty means the embedded defaults.
type KeywordsConfig struct {
	File string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// StorageConfig selects the report store backend
type StorageConfig struct {
	Backend string // "supabase" or "postgres"
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// Connection pool settings
	MaxConns int
	MinConns int
}

// SupabaseConfig holds Supabase REST client configuration
type SupabaseConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// DistrictConfig isolates one deployment's table, sessions and rate limits.
// Running several districts means running several instances, each with its
// own table name and prefix.
type DistrictConfig struct {
	Prefix       string
	ReportsTable string
	FetchLimit   int
}

// LLMConfig holds the optional response-polishing LLM configuration.
// An empty APIKey disables the client entirely; the heuristic formatter
// output is served as-is.
type LLMConfig struct {
	APIKey         string
	Endpoint       string
	Model          string
	Timeout        time.Duration
	RequestsPerMin int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Enabled         bool
	MaxSize         int
	CleanupInterval time.Duration
	DefaultTTL      time.Duration
}

// SessionConfig holds conversation session configuration
type SessionConfig struct {
	IdleTTL         time.Duration
	MaxHistory      int
	CleanupInterval time.Duration
}

// MetricsConfig holds performance monitoring configuration
type MetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getSliceEnv("ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "supabase"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getIntEnv("DB_PORT", 5432),
			Database: getEnv("DB_NAME", "postgres"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "prefer"),
			MaxConns: getIntEnv("DB_MAX_CONNS", 10),
			MinConns: getIntEnv("DB_MIN_CONNS", 2),
		},
		Supabase: SupabaseConfig{
			URL:     getEnv("SUPABASE_URL", ""),
			APIKey:  getEnv("SUPABASE_API_KEY", ""),
			Timeout: getDurationEnv("SUPABASE_TIMEOUT", 30*time.Second),
		},
		District: DistrictConfig{
			Prefix:       getEnv("DISTRICT_PREFIX", "default"),
			ReportsTable: getEnv("IR_REPORTS_TABLE", "ir_reports"),
			FetchLimit:   getIntEnv("REPORT_FETCH_LIMIT", 1000),
		},
		LLM: LLMConfig{
			APIKey:         getEnv("LLM_API_KEY", ""),
			Endpoint:       getEnv("LLM_ENDPOINT", "https://generativelanguage.googleapis.com/v1beta"),
			Model:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
			Timeout:        getDurationEnv("LLM_TIMEOUT", 60*time.Second),
			RequestsPerMin: getIntEnv("LLM_REQUESTS_PER_MIN", 8),
		},
		Keywords: KeywordsConfig{
			File: getEnv("KEYWORDS_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Cache: CacheConfig{
			Enabled:         getBoolEnv("CACHE_ENABLED", true),
			MaxSize:         getIntEnv("CACHE_MAX_SIZE", 1000),
			CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			DefaultTTL:      getDurationEnv("CACHE_DEFAULT_TTL", 60*time.Second),
		},
		Sessions: SessionConfig{
			IdleTTL:         getDurationEnv("SESSION_IDLE_TTL", 30*time.Minute),
			MaxHistory:      getIntEnv("SESSION_MAX_HISTORY", 10),
			CleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled:            getBoolEnv("METRICS_ENABLED", true),
			SlowQueryThreshold: getDurationEnv("SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		},
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets duration from environment variable with default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets integer from environment variable with default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets boolean from environment variable with default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getSliceEnv gets a comma-separated list from environment variable
func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "supabase":
		if c.Supabase.URL == "" {
			return &ConfigError{Field: "SUPABASE_URL", Message: "Supabase URL is required"}
		}
		if c.Supabase.APIKey == "" {
			return &ConfigError{Field: "SUPABASE_API_KEY", Message: "Supabase API key is required"}
		}
	case "postgres":
		if c.Database.Host == "" {
			return &ConfigError{Field: "DB_HOST", Message: "database host is required"}
		}
		if c.Database.Database == "" {
			return &ConfigError{Field: "DB_NAME", Message: "database name is required"}
		}
	default:
		return &ConfigError{Field: "STORAGE_BACKEND", Message: "must be one of: supabase, postgres"}
	}
	if c.District.ReportsTable == "" {
		return &ConfigError{Field: "IR_REPORTS_TABLE", Message: "reports table name is required"}
	}
	if c.District.FetchLimit <= 0 {
		return &ConfigError{Field: "REPORT_FETCH_LIMIT", Message: "fetch limit must be positive"}
	}
	return nil
}

// ConfigError represents configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
