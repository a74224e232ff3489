package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	// Clear any environment variables to test defaults
	env := []string{
		"APP_ENV", "LOG_LEVEL", "CONFIG_PATH", "DEFAULT_SALT",
		"METRICS_NAMESPACE", "SKIP_UNKNOWN_KEYS",
	}

	for _, key := range env {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "dev" {
		t.Errorf("Expected AppEnv='dev', got '%s'", cfg.AppEnv)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel='info', got '%s'", cfg.LogLevel)
	}
	if cfg.ConfigPath != "konditional.json" {
		t.Errorf("Expected ConfigPath='konditional.json', got '%s'", cfg.ConfigPath)
	}
	if cfg.MetricsNamespace != "konditional" {
		t.Errorf("Expected MetricsNamespace='konditional', got '%s'", cfg.MetricsNamespace)
	}
	if cfg.SkipUnknownKeys {
		t.Error("Expected SkipUnknownKeys=false")
	}
	if cfg.DefaultSalt == "" {
		t.Error("Expected DefaultSalt to be auto-generated, got empty string")
	}
	if !cfg.DefaultSaltGenerated() {
		t.Error("Expected DefaultSaltGenerated()=true when DEFAULT_SALT is unset in dev")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	os.Setenv("APP_ENV", "test")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("CONFIG_PATH", "/etc/konditional/flags.json")
	os.Setenv("DEFAULT_SALT", "fixed-salt")
	os.Setenv("METRICS_NAMESPACE", "myapp")
	os.Setenv("SKIP_UNKNOWN_KEYS", "true")

	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("CONFIG_PATH")
		os.Unsetenv("DEFAULT_SALT")
		os.Unsetenv("METRICS_NAMESPACE")
		os.Unsetenv("SKIP_UNKNOWN_KEYS")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "test" {
		t.Errorf("Expected AppEnv='test', got '%s'", cfg.AppEnv)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel='debug', got '%s'", cfg.LogLevel)
	}
	if cfg.ConfigPath != "/etc/konditional/flags.json" {
		t.Errorf("Expected ConfigPath override, got '%s'", cfg.ConfigPath)
	}
	if cfg.DefaultSalt != "fixed-salt" {
		t.Errorf("Expected DefaultSalt='fixed-salt', got '%s'", cfg.DefaultSalt)
	}
	if cfg.DefaultSaltGenerated() {
		t.Error("Expected DefaultSaltGenerated()=false when DEFAULT_SALT is explicitly set")
	}
	if cfg.MetricsNamespace != "myapp" {
		t.Errorf("Expected MetricsNamespace='myapp', got '%s'", cfg.MetricsNamespace)
	}
	if !cfg.SkipUnknownKeys {
		t.Error("Expected SkipUnknownKeys=true")
	}
}

func TestLoad_ProdRequiresDefaultSalt(t *testing.T) {
	os.Setenv("APP_ENV", "prod")
	os.Unsetenv("DEFAULT_SALT")
	defer os.Unsetenv("APP_ENV")

	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail when APP_ENV=prod and DEFAULT_SALT is unset")
	}
}

func TestLoad_MissingEnvFileIsAcceptable(t *testing.T) {
	// Even if .env file doesn't exist, Load should succeed with defaults
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not fail when .env is missing: %v", err)
	}
	if cfg == nil {
		t.Fatal("Config should not be nil")
	}
}

func TestLoad_AllFieldsPopulated(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ConfigPath == "" {
		t.Error("ConfigPath should not be empty")
	}
	if cfg.LogLevel == "" {
		t.Error("LogLevel should not be empty")
	}
	if cfg.MetricsNamespace == "" {
		t.Error("MetricsNamespace should not be empty")
	}
	if cfg.DefaultSalt == "" {
		t.Error("DefaultSalt should not be empty")
	}
}

func TestLoad_ROLLOUT_SALT_Alias(t *testing.T) {
	os.Setenv("ROLLOUT_SALT", "legacy-alias-salt")
	defer os.Unsetenv("ROLLOUT_SALT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DefaultSalt != "legacy-alias-salt" {
		t.Errorf("Expected DEFAULT_SALT bound from ROLLOUT_SALT alias, got '%s'", cfg.DefaultSalt)
	}
}
