package config

import (
	"os"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"ALPHA_VANTAGE_API_KEY",
	"ALPACA_API_KEY",
	"ALPACA_API_SECRET",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USERNAME",
	"SMTP_PASSWORD",
	"SMTP_FROM",
	"JWT_SECRET",
	"TOKEN_TTL_MINUTES",
	"SESSION_TTL_HOURS",
	"BCRYPT_COST",
	"ANALYSIS_FAST_WINDOW",
	"ANALYSIS_SLOW_WINDOW",
	"ANALYSIS_CACHE_TTL_HOURS",
	"ANALYSIS_TIMEOUT_SECONDS",
	"HTTP_PORT",
	"CORS_ALLOWED_ORIGINS",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Redis.Addr != "127.0.0.1:6379" {
		t.Errorf("expected Redis.Addr='127.0.0.1:6379', got %s", cfg.Redis.Addr)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("expected SMTP.Port=587, got %d", cfg.SMTP.Port)
	}
	if cfg.Auth.TokenTTLMinutes != 60 {
		t.Errorf("expected TokenTTLMinutes=60, got %d", cfg.Auth.TokenTTLMinutes)
	}
	if cfg.Analysis.FastWindow != 50 {
		t.Errorf("expected FastWindow=50, got %d", cfg.Analysis.FastWindow)
	}
	if cfg.Analysis.SlowWindow != 200 {
		t.Errorf("expected SlowWindow=200, got %d", cfg.Analysis.SlowWindow)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected HTTP.Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("ANALYSIS_FAST_WINDOW", "20")
	os.Setenv("ANALYSIS_SLOW_WINDOW", "100")
	os.Setenv("HTTP_PORT", "9191")
	os.Setenv("SMTP_HOST", "smtp.example.com")
	os.Setenv("SMTP_FROM", "alerts@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Analysis.FastWindow != 20 {
		t.Errorf("expected FastWindow=20, got %d", cfg.Analysis.FastWindow)
	}
	if cfg.Analysis.SlowWindow != 100 {
		t.Errorf("expected SlowWindow=100, got %d", cfg.Analysis.SlowWindow)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("expected HTTP.Port=9191, got %d", cfg.HTTP.Port)
	}
	if !cfg.HasSMTP() {
		t.Error("expected HasSMTP() to be true")
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is unset")
	}
}

func TestValidate_WindowOrdering(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Analysis.FastWindow = 200
	cfg.Analysis.SlowWindow = 50

	if err := cfg.Validate(); err == nil {
		t.Error("expected error when slow window does not exceed fast window")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := NewTestConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}
}

func TestHasHelpers(t *testing.T) {
	cfg := NewTestConfig()

	if cfg.HasDatabase() {
		t.Error("HasDatabase() should be false without DATABASE_URL")
	}
	if cfg.HasAlphaVantage() {
		t.Error("HasAlphaVantage() should be false without an API key")
	}
	if cfg.HasAlpaca() {
		t.Error("HasAlpaca() should be false without credentials")
	}

	cfg.AlphaVantage.APIKey = "demo"
	if !cfg.HasAlphaVantage() {
		t.Error("HasAlphaVantage() should be true with an API key")
	}
}
