// Package config provides application configuration loading from environment variables and .env files.
// It uses viper for flexible configuration management with sensible defaults.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration loaded from environment variables or .env file.
// Configuration priority: environment variables > .env file > defaults.
type Config struct {
	AppEnv               string // Application environment (dev, staging, prod)
	LogLevel             string // zerolog level name (debug, info, warn, error)
	ConfigPath           string // path to the JSON configuration file the file source watches
	DefaultSalt          string // fallback salt for features that don't declare their own
	MetricsNamespace     string // Prometheus metric name prefix
	SkipUnknownKeys      bool   // tolerate undeclared feature keys during decode instead of failing
	defaultSaltGenerated bool   // internal: tracks if DefaultSalt was auto-generated
}

const (
	saltByteSize          = 16 // 16 bytes = 128 bits of entropy
	defaultSaltFallback   = "default-random-salt"
	defaultSaltWarningMsg = "WARNING: DEFAULT_SALT not configured. Generated random salt: %s. Bucket assignments for features without their own salt will change on restart. Set DEFAULT_SALT in production for consistent rollout behavior."
)

// generateRandomSalt creates a cryptographically secure random 16-byte hex-encoded salt.
// Returns a fallback value if random generation fails (should never happen in practice).
func generateRandomSalt() string {
	bytes := make([]byte, saltByteSize)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("ERROR: Failed to generate random salt: %v. Using fallback.", err)
		return defaultSaltFallback
	}
	return hex.EncodeToString(bytes)
}

// Load reads configuration from environment variables and .env file (if present).
// Environment variables take precedence over .env file values.
// Returns a Config struct with all values populated (either from env or defaults).
//
// Validation:
//   Besides requiring the non-empty fields, this function fails when
//   APP_ENV=prod and DEFAULT_SALT is unset. In any other environment an
//   unset salt is generated; DefaultSaltGenerated reports when that happened.
func Load() (*Config, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigFile(".env") // Optional; silently ignored if file doesn't exist
	_ = viperInstance.ReadInConfig()    // Ignore error - .env is optional
	bindEnvAliases(viperInstance)
	viperInstance.AutomaticEnv() // Read from environment variables

	setConfigDefaults(viperInstance)
	appEnv := strings.TrimSpace(viperInstance.GetString("APP_ENV"))
	defaultSalt, defaultSaltConfigured, err := getDefaultSalt(viperInstance, appEnv)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:               appEnv,
		LogLevel:             strings.ToLower(strings.TrimSpace(viperInstance.GetString("LOG_LEVEL"))),
		ConfigPath:           strings.TrimSpace(viperInstance.GetString("CONFIG_PATH")),
		DefaultSalt:          defaultSalt,
		MetricsNamespace:     strings.TrimSpace(viperInstance.GetString("METRICS_NAMESPACE")),
		SkipUnknownKeys:      viperInstance.GetBool("SKIP_UNKNOWN_KEYS"),
		defaultSaltGenerated: !defaultSaltConfigured,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	warnOnUnsafeDefaults(cfg)

	return cfg, nil
}

// DefaultSaltGenerated reports whether DefaultSalt was auto-generated rather
// than read from configuration, for callers that want to refuse to start in
// a production environment with an unstable salt.
func (c *Config) DefaultSaltGenerated() bool { return c.defaultSaltGenerated }

// setConfigDefaults sets default values for all configuration options.
// These defaults are suitable for local development but should be overridden in production.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CONFIG_PATH", "konditional.json")
	v.SetDefault("METRICS_NAMESPACE", "konditional")
	v.SetDefault("SKIP_UNKNOWN_KEYS", false)
}

// getDefaultSalt retrieves DEFAULT_SALT from config or generates a random one.
// Logs a warning if a random salt is generated, as this will cause inconsistent
// bucket assignment across process restarts for features without their own
// salt. In production, DEFAULT_SALT must be explicitly set.
func getDefaultSalt(v *viper.Viper, appEnv string) (string, bool, error) {
	salt := strings.TrimSpace(v.GetString("DEFAULT_SALT"))
	if salt != "" {
		return salt, true, nil
	}
	if strings.EqualFold(appEnv, "prod") {
		return "", false, fmt.Errorf("DEFAULT_SALT must be set when APP_ENV=prod")
	}
	salt = generateRandomSalt()
	log.Printf(defaultSaltWarningMsg, salt)
	return salt, false, nil
}

func bindEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("CONFIG_PATH", "CONFIG_PATH", "KONDITIONAL_CONFIG_PATH")
	_ = v.BindEnv("DEFAULT_SALT", "DEFAULT_SALT", "ROLLOUT_SALT")
}

func validateConfig(cfg *Config) error {
	if cfg.AppEnv == "" {
		return fmt.Errorf("APP_ENV must not be empty")
	}
	if cfg.LogLevel == "" {
		return fmt.Errorf("LOG_LEVEL must not be empty")
	}
	if cfg.ConfigPath == "" {
		return fmt.Errorf("CONFIG_PATH must not be empty")
	}
	if cfg.MetricsNamespace == "" {
		return fmt.Errorf("METRICS_NAMESPACE must not be empty")
	}
	return nil
}

func warnOnUnsafeDefaults(cfg *Config) {
	if strings.EqualFold(cfg.AppEnv, "prod") && cfg.defaultSaltGenerated {
		log.Printf("WARNING: APP_ENV=prod with generated DEFAULT_SALT. Set DEFAULT_SALT to stabilize bucketing.")
	}
}
