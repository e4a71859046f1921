package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvConfluenceURL, EnvConfluenceToken, EnvRedisAddr, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	content := `
confluence:
  url: "https://wiki.example.org"
  timeout: 5s
production:
  space: "OPS"
  root_title: "Device Docs"
inventory: "/data/happi_info.json"
templates_dir: "/data/templates"
related:
  limit: 3
redis:
  addr: "localhost:6379"
  ttl: 1h
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://wiki.example.org", cfg.Confluence.URL)
	assert.Equal(t, 5*time.Second, cfg.Confluence.Timeout)
	assert.Equal(t, Target{Space: "OPS", RootTitle: "Device Docs"}, cfg.Target(true))
	assert.Equal(t, "~klauer", cfg.Target(false).Space, "Unset sections keep their defaults")
	assert.Equal(t, 2, cfg.Target(false).Limit)
	assert.Equal(t, "/data/happi_info.json", cfg.Inventory)
	assert.Equal(t, 3, cfg.Related.Limit)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, " (Typhos)", cfg.PageTitleMarker)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfluenceURL, "https://other.example.org")
	t.Setenv(EnvConfluenceToken, "secret")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Parse([]byte("confluence:\n  token: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://other.example.org", cfg.Confluence.URL)
	assert.Equal(t, "secret", cfg.Confluence.Token)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestParse_Invalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "confluence: [", "parsing config file"},
		{"bad url", "confluence:\n  url: wiki.example.org\n", "confluence.url"},
		{"missing space", "production:\n  space: \"\"\n", "production.space"},
		{"negative limit", "test:\n  limit: -1\n", "test.limit"},
		{"bad selector", "record_selector: \"$[\"\n", "record_selector"},
		{"same labels", "labels:\n  generated: x\n  no_overwrite: x\n", "must differ"},
		{"zero related limit", "related:\n  limit: 0\n", "related.limit"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
