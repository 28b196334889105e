package app

import (
	"toolbench/internal/config"
)

// Config holds the application configuration assembled from CLI flags.
type Config struct {
	// Debug enables verbose logging across the application.
	Debug bool

	// Silent suppresses log output entirely. Used by commands that own
	// their terminal output.
	Silent bool

	// ConfigPath optionally overrides the configuration directory.
	// Empty means the default user configuration directory.
	ConfigPath string

	// Toolbench is the loaded file configuration, populated during
	// bootstrap.
	Toolbench *config.ToolbenchConfig
}

// NewConfig creates a new application configuration from CLI flags.
func NewConfig(debug bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
