package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyarchive/voaccess/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
	assert.Equal(t, DefaultUserAgent, cfg.Settings.UserAgent)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.NotEmpty(t, cfg.Settings.DownloadDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromReader(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		check       func(t *testing.T, cfg *Config)
		expectError error
	}{
		{
			name: "full config",
			yaml: `
providers:
  aws:
    profile: archive
    region: us-east-1
settings:
  download_dir: /data/products
  http_timeout: 10s
  json_column: mirrors
  output_format: json
  log_level: debug
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "archive", cfg.Providers.AWS.Profile)
				assert.Equal(t, "/data/products", cfg.Settings.DownloadDir)
				assert.Equal(t, 10*time.Second, cfg.Settings.HTTPTimeout)
				assert.Equal(t, "mirrors", cfg.Settings.JSONColumn)
				assert.Equal(t, "json", cfg.Settings.OutputFormat)
			},
		},
		{
			name: "defaults applied",
			yaml: `settings: {}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
				assert.Equal(t, "info", cfg.Settings.LogLevel)
			},
		},
		{
			name:        "invalid yaml",
			yaml:        `settings: [`,
			expectError: errors.ErrConfigParse,
		},
		{
			name:        "invalid log level",
			yaml:        "settings:\n  log_level: loud\n",
			expectError: errors.ErrConfigValidation,
		},
		{
			name:        "invalid output format",
			yaml:        "settings:\n  output_format: xml\n",
			expectError: errors.ErrConfigValidation,
		},
		{
			name:        "negative timeout",
			yaml:        "settings:\n  http_timeout: -5s\n",
			expectError: errors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigFromReader(strings.NewReader(tt.yaml))
			if tt.expectError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Settings.HTTPTimeout)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Providers.AWS.Profile = "archive"
	cfg.Settings.JSONColumn = "mirrors"
	require.NoError(t, cfg.SaveConfig(path))

	// no stray temp file left behind
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "archive", loaded.Providers.AWS.Profile)
	assert.Equal(t, "mirrors", loaded.Settings.JSONColumn)
}

func TestAWSMetadata(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.AWSMetadata())

	cfg.Providers.AWS = AWSConfig{Profile: "archive", Region: "us-east-1", Endpoint: "http://minio:9000"}
	assert.Equal(t, map[string]string{
		"profile":  "archive",
		"region":   "us-east-1",
		"endpoint": "http://minio:9000",
	}, cfg.AWSMetadata())
}
