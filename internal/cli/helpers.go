package cli

import (
	"fmt"

	"github.com/skyarchive/voaccess/internal/logger"
	"github.com/skyarchive/voaccess/pkg/access"
	"github.com/skyarchive/voaccess/pkg/config"
)

// These variables are set by the main package.
var (
	ConfigPath   *string
	Verbose      *bool
	OutputFormat *string
)

// loadConfig loads the configuration honoring the global CLI flags.
func loadConfig() (*config.Config, error) {
	configPath := ""
	if ConfigPath != nil {
		configPath = *ConfigPath
	}
	if configPath == "" {
		defaultPath, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	return cfg, nil
}

// providerMetadata assembles the per-provider access metadata bundles from
// the configuration.
func providerMetadata(cfg *config.Config) map[string]access.Metadata {
	meta := make(map[string]access.Metadata)
	if aws := cfg.AWSMetadata(); len(aws) > 0 {
		meta[access.ProviderAWS] = aws
	}
	return meta
}
