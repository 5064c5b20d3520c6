// Package config loads the process configuration from the environment.
// Signing configuration is resolved once here; the rest of the program
// receives the resolved auth.SigningConfig and never re-reads the
// environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/openpress/backend/auth"
)

type Config struct {
	Port        int    // HTTP server port (default: 3000)
	DatabaseDSN string // SQLite DSN (default: file:openpress.db?cache=shared)
	LogLevel    string // Log level (debug, info, warn, error) (default: info)

	SigningMode string // symmetric or asymmetric (default: symmetric)
	Secret      string // Required in symmetric mode
	PrivateKey  string // PEM material or a path to it; required in asymmetric mode
	PublicKey   string // PEM material or a path to it; required in asymmetric mode
	Algorithm   string // Signing algorithm (default: HS256 symmetric, RS256 asymmetric)

	Issuer          string        // iss claim stamped on minted tokens
	Audience        []string      // aud claim values
	TokenExpiration time.Duration // Default token lifetime (default: 24h)

	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func Load() (Config, error) {
	cfg := Config{
		Port:        getEnvIntOrDefault("SERVER_PORT", 3000),
		DatabaseDSN: getEnvOrDefault("DATABASE_DSN", "file:openpress.db?cache=shared"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),

		SigningMode: getEnvOrDefault("AUTH_SIGNING_MODE", string(auth.SigningModeSymmetric)),
		Secret:      os.Getenv("AUTH_SIGNING_SECRET"),
		PrivateKey:  os.Getenv("AUTH_PRIVATE_KEY_PEM"),
		PublicKey:   os.Getenv("AUTH_PUBLIC_KEY_PEM"),
		Algorithm:   os.Getenv("AUTH_ALGORITHM"),

		Issuer:          getEnvOrDefault("AUTH_ISSUER", "openpress"),
		TokenExpiration: getEnvDurationOrDefault("AUTH_TOKEN_EXPIRATION", 24*time.Hour),

		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if aud := os.Getenv("AUTH_AUDIENCE"); aud != "" {
		for _, a := range strings.Split(aud, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Audience = append(cfg.Audience, a)
			}
		}
	}

	if cfg.Algorithm == "" {
		if cfg.SigningMode == string(auth.SigningModeAsymmetric) {
			cfg.Algorithm = "RS256"
		} else {
			cfg.Algorithm = "HS256"
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate implements validation.Validatable
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.SigningMode, validation.Required, validation.In(
			string(auth.SigningModeSymmetric),
			string(auth.SigningModeAsymmetric),
		)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "invalid configuration")
	}

	switch auth.SigningMode(c.SigningMode) {
	case auth.SigningModeSymmetric:
		if c.Secret == "" {
			return goerrors.New("AUTH_SIGNING_SECRET is required in symmetric mode", goerrors.CategoryOperation).
				WithTextCode("SIGNING_MISCONFIGURED")
		}
	case auth.SigningModeAsymmetric:
		if c.PrivateKey == "" || c.PublicKey == "" {
			return goerrors.New("AUTH_PRIVATE_KEY_PEM and AUTH_PUBLIC_KEY_PEM are required in asymmetric mode", goerrors.CategoryOperation).
				WithTextCode("SIGNING_MISCONFIGURED")
		}
	}

	return nil
}

// Redacted returns a loggable view of the configuration with secret
// material masked.
func (c Config) Redacted() map[string]any {
	mask := func(v string) string {
		if v == "" {
			return ""
		}
		return "[redacted]"
	}

	return map[string]any{
		"port":             c.Port,
		"database_dsn":     c.DatabaseDSN,
		"log_level":        c.LogLevel,
		"signing_mode":     c.SigningMode,
		"secret":           mask(c.Secret),
		"private_key":      mask(c.PrivateKey),
		"public_key":       mask(c.PublicKey),
		"algorithm":        c.Algorithm,
		"issuer":           c.Issuer,
		"audience":         c.Audience,
		"token_expiration": c.TokenExpiration.String(),
	}
}

// Signing resolves the signing configuration for the active mode. Key
// material can be inline PEM or a path to a PEM file.
func (c Config) Signing() (*auth.SigningConfig, error) {
	switch auth.SigningMode(c.SigningMode) {
	case auth.SigningModeAsymmetric:
		priv, err := readKeyMaterial(c.PrivateKey)
		if err != nil {
			return nil, err
		}
		pub, err := readKeyMaterial(c.PublicKey)
		if err != nil {
			return nil, err
		}
		return auth.NewAsymmetricSigning(priv, pub, c.Algorithm, c.Issuer, c.Audience, c.TokenExpiration)
	default:
		return auth.NewSymmetricSigning(c.Secret, c.Algorithm, c.Issuer, c.Audience, c.TokenExpiration)
	}
}

func readKeyMaterial(value string) ([]byte, error) {
	if strings.Contains(value, "-----BEGIN") {
		return []byte(value), nil
	}

	data, err := os.ReadFile(value)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read key material").
			WithTextCode("SIGNING_MISCONFIGURED")
	}

	return data, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
