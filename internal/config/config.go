// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the compositor configuration
type Config struct {
	// Compositor core settings
	Compositor CompositorConfig `mapstructure:"compositor"`

	// Input settings
	Input InputConfig `mapstructure:"input"`

	// Cursor theme settings
	Cursor CursorConfig `mapstructure:"cursor"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// CompositorConfig contains core compositor settings
type CompositorConfig struct {
	// TransactionTimeoutMS bounds how long a layout transaction waits
	// for client acks before force-committing.
	TransactionTimeoutMS int `mapstructure:"transaction_timeout_ms"`

	// WMSocketPath overrides the window-manager protocol socket path
	WMSocketPath string `mapstructure:"wm_socket_path"`

	// ControlSocketPath overrides the control socket path
	ControlSocketPath string `mapstructure:"control_socket_path"`

	// BorderWidth is the width of window borders in logical pixels
	BorderWidth int `mapstructure:"border_width"`
}

// InputConfig contains keyboard and pointer settings
type InputConfig struct {
	RepeatRate  int `mapstructure:"repeat_rate"`  // Key repeats per second
	RepeatDelay int `mapstructure:"repeat_delay"` // Milliseconds before repeat starts
}

// CursorConfig contains xcursor theme settings exported to clients
type CursorConfig struct {
	Theme string `mapstructure:"theme"`
	Size  int    `mapstructure:"size"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	FileLogging bool   `mapstructure:"file_logging"` // Enable/disable file logging
	LogLevel    string `mapstructure:"log_level"`    // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Compositor: CompositorConfig{
			TransactionTimeoutMS: 200,
			WMSocketPath:         "",
			ControlSocketPath:    "",
			BorderWidth:          2,
		},
		Input: InputConfig{
			RepeatRate:  25,
			RepeatDelay: 600,
		},
		Cursor: CursorConfig{
			Theme: "",
			Size:  24,
		},
		Logging: LoggingConfig{
			FileLogging: false,
			LogLevel:    "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("tidal")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "tidal"))
		} else if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "tidal"))
		}
		viper.AddConfigPath("/etc/tidal")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("compositor.transaction_timeout_ms", DefaultConfig.Compositor.TransactionTimeoutMS)
	viper.SetDefault("compositor.wm_socket_path", DefaultConfig.Compositor.WMSocketPath)
	viper.SetDefault("compositor.control_socket_path", DefaultConfig.Compositor.ControlSocketPath)
	viper.SetDefault("compositor.border_width", DefaultConfig.Compositor.BorderWidth)

	viper.SetDefault("input.repeat_rate", DefaultConfig.Input.RepeatRate)
	viper.SetDefault("input.repeat_delay", DefaultConfig.Input.RepeatDelay)

	viper.SetDefault("cursor.theme", DefaultConfig.Cursor.Theme)
	viper.SetDefault("cursor.size", DefaultConfig.Cursor.Size)

	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) && strings.Contains(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tidal", "tidal.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/tidal/tidal.toml"
	}

	return filepath.Join(home, ".config", "tidal", "tidal.toml")
}
