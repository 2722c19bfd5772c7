package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServerURL = "http://localhost:8000"
	DefaultLogDir    = "logs"
)

// Config holds application configuration
type Config struct {
	ServerURL  string        // Base URL of the Answer Service
	Timeout    time.Duration // Per-request timeout, 0 means none
	LogDir     string        // Directory for rotated logs, traces and metrics
	Debug      bool
	Telemetry  bool   // Export traces and metrics to the log directory
	Transcript string // SQLite path for the local transcript, empty disables it
	Plain      bool   // Line-mode REPL instead of the full-screen UI

	envErr error // first environment value Load could not parse
}

// Load builds a Config from the environment, reading .env first if present.
// Flags parsed afterwards override these values. Values that do not parse
// are reported by Validate.
func Load() Config {
	_ = godotenv.Load()

	timeout, err := getEnvAsDurationOrDefault("ASKCHAT_TIMEOUT", 0)

	return Config{
		envErr:     err,
		ServerURL:  getEnvOrDefault("ASKCHAT_SERVER_URL", DefaultServerURL),
		Timeout:    timeout,
		LogDir:     getEnvOrDefault("ASKCHAT_LOG_DIR", DefaultLogDir),
		Debug:      getEnvAsBoolOrDefault("ASKCHAT_DEBUG", false),
		Telemetry:  getEnvAsBoolOrDefault("ASKCHAT_TELEMETRY", false),
		Transcript: getEnvOrDefault("ASKCHAT_TRANSCRIPT", ""),
		Plain:      getEnvAsBoolOrDefault("ASKCHAT_PLAIN", false),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url %q must use http or https", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("server url %q has no host", c.ServerURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.LogDir == "" {
		return fmt.Errorf("log directory must be set")
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsDurationOrDefault accepts whole seconds ("15") or a Go duration ("1m30s").
func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal, fmt.Errorf("invalid %s %q: want seconds or a duration like 30s", key, val)
	}
	return d, nil
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
