package config

import (
	"strings"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "ASKCHAT_TEST_VAR_1", "http://answers:9000", "default", "http://answers:9000"},
		{"uses default when empty", "ASKCHAT_TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envValue)

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsBoolOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal bool
		expected   bool
	}{
		{"parses true", "true", false, true},
		{"parses 0", "0", true, false},
		{"uses default for empty", "", true, true},
		{"uses default for garbage", "maybe", false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ASKCHAT_TEST_BOOL", tc.envValue)

			result := getEnvAsBoolOrDefault("ASKCHAT_TEST_BOOL", tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
		wantErr  bool
	}{
		{"whole seconds", "15", 15 * time.Second, false},
		{"go duration", "1m30s", 90 * time.Second, false},
		{"unit suffix", "5s", 5 * time.Second, false},
		{"uses default for empty", "", 0, false},
		{"rejects garbage", "soon", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ASKCHAT_TEST_DURATION", tc.envValue)

			result, err := getEnvAsDurationOrDefault("ASKCHAT_TEST_DURATION", 0)
			if (err != nil) != tc.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tc.wantErr)
			}
			if result != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, result)
			}
		})
	}
}

func TestLoad_BadTimeoutFailsValidation(t *testing.T) {
	t.Setenv("ASKCHAT_SERVER_URL", "")
	t.Setenv("ASKCHAT_LOG_DIR", "")
	t.Setenv("ASKCHAT_TIMEOUT", "five seconds")

	err := Load().Validate()
	if err == nil {
		t.Fatal("expected an unparseable timeout to be reported")
	}
	if !strings.Contains(err.Error(), "ASKCHAT_TIMEOUT") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("ASKCHAT_SERVER_URL", "https://answers.example.com")
	t.Setenv("ASKCHAT_TIMEOUT", "15")
	t.Setenv("ASKCHAT_LOG_DIR", "")
	t.Setenv("ASKCHAT_PLAIN", "1")

	cfg := Load()

	if cfg.ServerURL != "https://answers.example.com" {
		t.Errorf("unexpected server url: %s", cfg.ServerURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.Timeout)
	}
	if cfg.LogDir != DefaultLogDir {
		t.Errorf("expected default log dir, got %q", cfg.LogDir)
	}
	if !cfg.Plain {
		t.Error("expected plain mode")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{ServerURL: DefaultServerURL, LogDir: DefaultLogDir}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"https is valid", func(c *Config) { c.ServerURL = "https://answers.example.com/api" }, false},
		{"rejects other schemes", func(c *Config) { c.ServerURL = "ftp://answers" }, true},
		{"rejects missing host", func(c *Config) { c.ServerURL = "http://" }, true},
		{"rejects negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"rejects empty log dir", func(c *Config) { c.LogDir = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
