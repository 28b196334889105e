package cmd

import (
	"context"
	"fmt"
	"toolbench/internal/app"

	"github.com/spf13/cobra"
)

// serveDebug enables verbose logging across the application.
// This helps troubleshoot wrapper generation and execution behavior.
var serveDebug bool

// serveConfigPath specifies a custom configuration directory path.
// When empty, configuration is loaded from the user config directory.
var serveConfigPath string

// serveCmd defines the serve command structure.
// This is the main command of toolbench: it builds the disclosure index over
// the generated wrapper tree, starts the execution engine and serves the
// REST API until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the toolbench execution server",
	Long: `Starts the toolbench HTTP server.

The server exposes:
  POST /execute                      run TypeScript or Python code in the scratch workspace
  GET  /tools                        catalog statistics
  GET  /tools/search                 tool search with selectable detail tiers
  GET  /tools/info/{server}/{tool}   single tool lookup
  GET  /health                       liveness and catalog summary

Code submitted to /execute may import the generated wrappers relative to
the workspace directory. Run 'toolbench generate' first to build them;
the server picks up regenerated wrappers without a restart.

Configuration:
  toolbench reads config.yaml from the configuration directory
  (default: ~/.config/toolbench). Use --config-path to point at a
  different directory.`,
	Args: cobra.NoArgs, // No arguments required
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveConfigPath)

	// Create and initialize the application
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Run the application
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// init registers the serve command and its flags with the root command.
// This is called automatically when the package is imported.
func init() {
	rootCmd.AddCommand(serveCmd)

	// Register command flags
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable general debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
}
