package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_defaults(t *testing.T) {
	for _, k := range []string{"PORT", "BACKEND_URL", "LOG_LEVEL", "LOG_FORMAT", "ENGINE", "MAX_RECOVERIES", "DEV_MEDIA_URL", "SESSION_RATE_LIMIT"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, DefaultEngine, cfg.Engine)
	assert.Equal(t, DefaultMaxRecoveries, cfg.MaxRecoveries)
	assert.Empty(t, cfg.DevMediaURL)
	assert.Equal(t, DefaultSessionRateLimit, cfg.SessionRateLimit)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_overrides(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local:9000/")
	t.Setenv("MAX_RECOVERIES", "7")
	t.Setenv("ENGINE", "native")
	t.Setenv("SESSION_RATE_LIMIT", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, "http://backend.local:9000", cfg.BackendURL, "trailing slash trimmed")
	assert.Equal(t, 7, cfg.MaxRecoveries)
	assert.Equal(t, "native", cfg.Engine)
	assert.Equal(t, DefaultSessionRateLimit, cfg.SessionRateLimit, "invalid int falls back")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{BackendURL: "http://127.0.0.1:11470"}, false},
		{"missing_backend", Config{}, true},
		{"relative_backend", Config{BackendURL: "127.0.0.1:11470/hls"}, true},
		{"negative_recoveries", Config{BackendURL: "http://x", MaxRecoveries: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_dotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("STREAMLY_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("STREAMLY_TEST_DOTENV", "")
	os.Unsetenv("STREAMLY_TEST_DOTENV")

	require.NoError(t, Load(path))
	assert.Equal(t, "from-file", GetEnv("STREAMLY_TEST_DOTENV", "fallback"))
}

func TestLoad_missing_file(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "nope.env")))
}
