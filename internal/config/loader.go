package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"toolbench/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/toolbench"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from a single specified directory.
// The directory should contain config.yaml; a missing file is not an error
// and yields the defaults. A .env file in the working directory is loaded
// first so ${VAR} references in header values can resolve against it.
func LoadConfig(configPath string) (ToolbenchConfig, error) {
	// Best-effort .env load; absence is the normal case outside development.
	if err := godotenv.Load(); err == nil {
		logging.Debug("ConfigLoader", "Loaded environment overrides from .env")
	}

	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return ToolbenchConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		// config malformed
		return ToolbenchConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	expandHeaderEnv(&config)

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// expandHeaderEnv resolves ${VAR} references in server header values so
// secrets stay out of config.yaml.
func expandHeaderEnv(config *ToolbenchConfig) {
	for i := range config.Servers {
		for k, v := range config.Servers[i].Headers {
			config.Servers[i].Headers[k] = os.ExpandEnv(v)
		}
	}
}
