package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skyarchive/voaccess/pkg/config"
	"github.com/skyarchive/voaccess/pkg/errors"
)

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  "View and modify voaccess configuration settings",
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigGetCmd(),
		newConfigInitCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.ToYAML()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

// Number of arguments expected by the set command.
const setCommandArgs = 2

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(setCommandArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			value, err := configValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		Long:  "Create a default configuration file",
		RunE: func(*cobra.Command, []string) error {
			return runConfigInit(force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration file")

	return cmd
}

func runConfigSet(key, value string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	switch key {
	case "download_dir":
		cfg.Settings.DownloadDir = value
	case "http_timeout":
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid duration %q", value)
		}
		cfg.Settings.HTTPTimeout = timeout
	case "user_agent":
		cfg.Settings.UserAgent = value
	case "json_column":
		cfg.Settings.JSONColumn = value
	case "output_format":
		cfg.Settings.OutputFormat = value
	case "log_level":
		cfg.Settings.LogLevel = value
	case "aws.profile":
		cfg.Providers.AWS.Profile = value
	case "aws.region":
		cfg.Providers.AWS.Region = value
	case "aws.endpoint":
		cfg.Providers.AWS.Endpoint = value
	default:
		return errors.Wrapf(errors.ErrConfigValidation, "unknown configuration key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.SaveConfig(path)
}

func configValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "download_dir":
		return cfg.Settings.DownloadDir, nil
	case "http_timeout":
		return cfg.Settings.HTTPTimeout.String(), nil
	case "user_agent":
		return cfg.Settings.UserAgent, nil
	case "json_column":
		return cfg.Settings.JSONColumn, nil
	case "output_format":
		return cfg.Settings.OutputFormat, nil
	case "log_level":
		return cfg.Settings.LogLevel, nil
	case "aws.profile":
		return cfg.Providers.AWS.Profile, nil
	case "aws.region":
		return cfg.Providers.AWS.Region, nil
	case "aws.endpoint":
		return cfg.Providers.AWS.Endpoint, nil
	default:
		return "", errors.Wrapf(errors.ErrConfigValidation, "unknown configuration key %q", key)
	}
}

func runConfigInit(force bool) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().SaveConfig(path); err != nil {
		return err
	}
	fmt.Printf("created configuration file at %s\n", path)
	return nil
}

func resolveConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}
	return config.GetDefaultConfigPath()
}
