package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Server config
	Server ServerConfig

	// database config, optional
	Database DatabaseConfig

	// CSRF config
	Security SecurityConfig

	// Gemini API config
	APIs APIConfig

	// retry budgets and client limits
	Limits LimitsConfig

	Log LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
// An empty URL disables the analysis history.
type DatabaseConfig struct {
	URL string
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	CSRFSecret     string
	SecureCookies  bool // true in production
	TrustedOrigins []string
}

// APIConfig holds the reasoning service configuration.
type APIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
}

// LimitsConfig holds retry and rate limiting settings.
type LimitsConfig struct {
	AnalyzeMaxRetries  int
	TrendingMaxRetries int
	RetryBackoffStep   time.Duration
	UpstreamTimeout    time.Duration
	RateLimitRPS       float64
	RateLimitBurst     int
}

type LogConfig struct {
	Level string
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// CredentialMissing reports whether the Gemini key is absent. This is not a
// load error: the engine starts unconfigured and rejects every analysis.
func (c *Config) CredentialMissing() bool {
	return c.APIs.GeminiAPIKey == ""
}

// HistoryEnabled reports whether a database was configured.
func (c *Config) HistoryEnabled() bool {
	return c.Database.URL != ""
}

// Load reads the full server configuration.
func Load() (*Config, error) {
	return load(true)
}

// LoadClient reads the configuration needed to run the engine outside the
// HTTP server. Server-only settings such as CSRF_SECRET are not required.
func LoadClient() (*Config, error) {
	return load(false)
}

func load(server bool) (*Config, error) {
	// A missing .env file is fine; production sets real env vars.
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []error

	cfg.Server = ServerConfig{
		Port:         getEnvOrDefault("SERVER_PORT", "8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second, &errs),
		WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 90*time.Second, &errs),
		IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second, &errs),
	}

	cfg.Database = DatabaseConfig{
		URL: os.Getenv("DATABASE_URL"),
	}

	cfg.Security = SecurityConfig{
		CSRFSecret:     os.Getenv("CSRF_SECRET"),
		SecureCookies:  cfg.Server.Environment == "production",
		TrustedOrigins: strings.Fields(os.Getenv("CSRF_TRUSTED_ORIGINS")),
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey == "undefined" {
		apiKey = ""
	}
	cfg.APIs = APIConfig{
		GeminiAPIKey:  apiKey,
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
	}

	cfg.Limits = LimitsConfig{
		AnalyzeMaxRetries:  getInt("ANALYZE_MAX_RETRIES", 3, &errs),
		TrendingMaxRetries: getInt("TRENDING_MAX_RETRIES", 2, &errs),
		RetryBackoffStep:   getDuration("RETRY_BACKOFF_STEP", 2*time.Second, &errs),
		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 60*time.Second, &errs),
		RateLimitRPS:       getFloat("RATE_LIMIT_RPS", 1, &errs),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 5, &errs),
	}

	cfg.Log = LogConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration parse failed:\n%w", errors.Join(errs...))
	}

	if err := cfg.validate(server); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and valid.
func (c *Config) validate(server bool) error {
	var errs []error

	if server {
		if c.Security.CSRFSecret == "" {
			errs = append(errs, errors.New("CSRF_SECRET is required"))
		} else if len(c.Security.CSRFSecret) < 32 {
			errs = append(errs, errors.New("CSRF_SECRET must be at least 32 characters"))
		}
	}

	if c.Limits.AnalyzeMaxRetries < 0 || c.Limits.TrendingMaxRetries < 0 {
		errs = append(errs, errors.New("retry budgets must not be negative"))
	}

	if c.Limits.RateLimitRPS <= 0 || c.Limits.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST at least 1"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

// getEnvOrDefault returns the env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return f
}

// MustLoad is like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
