package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Redis configuration (session store)
	Redis RedisConfig

	// External service configurations
	AlphaVantage AlphaVantageConfig
	Alpaca       AlpacaConfig
	SMTP         SMTPConfig

	// Auth configuration
	Auth AuthConfig

	// Analysis configuration
	Analysis AnalysisConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey string
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AuthConfig holds token signing and session configuration
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	SessionTTLHours int
	BcryptCost      int
}

// AnalysisConfig holds series analysis configuration
type AnalysisConfig struct {
	FastWindow     int
	SlowWindow     int
	CacheTTLHours  int
	TimeoutSeconds int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               int
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     getEnvString("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    os.Getenv("ALPACA_API_KEY"),
			APISecret: os.Getenv("ALPACA_API_SECRET"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
			SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24*7),
			BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		},
		Analysis: AnalysisConfig{
			FastWindow:     getEnvInt("ANALYSIS_FAST_WINDOW", 50),
			SlowWindow:     getEnvInt("ANALYSIS_SLOW_WINDOW", 200),
			CacheTTLHours:  getEnvInt("ANALYSIS_CACHE_TTL_HOURS", 12),
			TimeoutSeconds: getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			Port:               getEnvInt("HTTP_PORT", 8080),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.Auth.TokenTTLMinutes)
	}
	if c.Auth.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive, got %d", c.Auth.SessionTTLHours)
	}

	if c.Analysis.FastWindow <= 1 {
		return fmt.Errorf("ANALYSIS_FAST_WINDOW must be greater than 1, got %d", c.Analysis.FastWindow)
	}
	if c.Analysis.SlowWindow <= c.Analysis.FastWindow {
		return fmt.Errorf("ANALYSIS_SLOW_WINDOW must exceed the fast window, got fast=%d slow=%d",
			c.Analysis.FastWindow, c.Analysis.SlowWindow)
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.TimeoutSeconds)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be a valid port, got %d", c.HTTP.Port)
	}

	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasAlphaVantage returns true if Alpha Vantage configuration is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// HasAlpaca returns true if Alpaca configuration is available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasSMTP returns true if outgoing mail is configured
func (c *Config) HasSMTP() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{URL: ""},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Auth: AuthConfig{
			JWTSecret:       "test-secret",
			TokenTTLMinutes: 60,
			SessionTTLHours: 24,
			BcryptCost:      4,
		},
		Analysis: AnalysisConfig{
			FastWindow:     50,
			SlowWindow:     200,
			CacheTTLHours:  12,
			TimeoutSeconds: 30,
		},
		HTTP: HTTPConfig{
			Port:               8080,
			CORSAllowedOrigins: "*",
		},
	}
}
