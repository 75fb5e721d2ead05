package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points ENV_FILE at a path that does not exist so a developer's .env
// cannot leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8084", cfg.Address())
	assert.Equal(t, "data/water_usage_with_prediction.csv", cfg.Dataset.CSVFile)
	assert.Empty(t, cfg.Dataset.CacheDir)
	assert.Equal(t, 30*time.Second, cfg.Dataset.LoadTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Security.EnableRateLimit)
}

func TestLoad_FromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CSV_FILE", "/srv/usage.csv")
	t.Setenv("CACHE_DIR", "/tmp/ecodrops")
	t.Setenv("LOAD_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, "/srv/usage.csv", cfg.Dataset.CSVFile)
	assert.Equal(t, "/tmp/ecodrops", cfg.Dataset.CacheDir)
	assert.Equal(t, 5*time.Second, cfg.Dataset.LoadTimeout)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CSV_FILE=from-file.csv\nLOG_LEVEL=warn\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("LOG_LEVEL", "error")
	// register a restore with t.Setenv, then unset so the file value applies
	t.Setenv("CSV_FILE", "")
	require.NoError(t, os.Unsetenv("CSV_FILE"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file.csv", cfg.Dataset.CSVFile)
	assert.Equal(t, "error", cfg.Logger.Level, "real environment wins over the file")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"negative read timeout", "SERVER_READ_TIMEOUT", "-1s"},
		{"negative load timeout", "LOAD_TIMEOUT", "-5s"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"zero rps", "SECURITY_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("ECODROPS_TEST_INT", "not-a-number")
	t.Setenv("ECODROPS_TEST_BOOL", "maybe")
	t.Setenv("ECODROPS_TEST_DURATION", "soon")

	assert.Equal(t, 7, getEnvInt("ECODROPS_TEST_INT", 7))
	assert.True(t, getEnvBool("ECODROPS_TEST_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDuration("ECODROPS_TEST_DURATION", time.Minute))
}
