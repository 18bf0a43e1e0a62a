package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration, resolved once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Port          string
	BackendURL    string
	LogLevel      string
	LogFormat     string
	Engine        string
	MaxRecoveries int
	DevMediaURL   string

	// SessionRateLimit is the number of session creations allowed per
	// client IP per minute. Zero disables the limit.
	SessionRateLimit int
}

// Defaults.
const (
	DefaultPort             = "8080"
	DefaultBackendURL       = "http://127.0.0.1:11470"
	DefaultEngine           = "hls"
	DefaultMaxRecoveries    = 3
	DefaultSessionRateLimit = 30
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files (e.g. ".env"); with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset.
func FromEnv() Config {
	return Config{
		Port:             GetEnv("PORT", DefaultPort),
		BackendURL:       strings.TrimRight(GetEnv("BACKEND_URL", DefaultBackendURL), "/"),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		LogFormat:        GetEnv("LOG_FORMAT", "json"),
		Engine:           GetEnv("ENGINE", DefaultEngine),
		MaxRecoveries:    GetEnvInt("MAX_RECOVERIES", DefaultMaxRecoveries),
		DevMediaURL:      GetEnv("DEV_MEDIA_URL", ""),
		SessionRateLimit: GetEnvInt("SESSION_RATE_LIMIT", DefaultSessionRateLimit),
	}
}

var errMissingBackend = errors.New("BACKEND_URL is not set")

// Validate reports configuration errors that would otherwise surface later
// as failed sessions.
func (c Config) Validate() error {
	if c.BackendURL == "" {
		return errMissingBackend
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("BACKEND_URL %q must be an absolute URL", c.BackendURL)
	}
	if c.MaxRecoveries < 0 {
		return fmt.Errorf("MAX_RECOVERIES must not be negative, got %d", c.MaxRecoveries)
	}
	return nil
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
