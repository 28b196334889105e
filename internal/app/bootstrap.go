package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"toolbench/internal/config"
	"toolbench/pkg/logging"
)

// Application bootstraps and runs the toolbench server. It encapsulates the
// loaded configuration and the initialized services.
//
// Example usage:
//
//	cfg := app.NewConfig(false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes an application instance. It
// configures logging, loads and validates the file configuration and builds
// all services. No listener is bound yet; that happens in Run.
func NewApplication(cfg *Config) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	var out io.Writer = os.Stdout
	if cfg.Silent {
		out = io.Discard
	}
	logging.InitForCLI(level, out)

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	if err := fileCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Toolbench = &fileCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Run starts serve mode and blocks until the context is canceled or a
// termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	return runServeMode(ctx, a.services)
}
