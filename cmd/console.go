package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"toolbench/internal/config"
	"toolbench/internal/console"
	"toolbench/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	consoleEndpoint   string
	consoleDebug      bool
	consoleConfigPath string
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console for a running toolbench server",
	Long: `Opens an interactive console against a running toolbench server.

Commands:
  run <code>                   execute a single line of TypeScript
  run                          start a multi-line block, finish with 'end'
  search [query] [options]     search the generated tool catalog
  info <server> <tool>         show a single tool
  tools                        list generated tools
  health                       show server health and catalog summary
  call <server> <tool> [json]  invoke an upstream tool directly
  exit                         leave the console

By default the console connects to the endpoint derived from the
configuration file. Override it with --endpoint.

Note: the server must be running (use 'toolbench serve') for everything
except 'call', which talks to the upstream MCP servers directly.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

// runConsole is the main entry point for the console command
func runConsole(cmd *cobra.Command, args []string) error {
	level := logging.LevelWarn
	if consoleDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	cfg, err := config.LoadConfig(consoleConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	endpoint := consoleEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle interrupts gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	callTimeout := time.Duration(cfg.ToolCall.TimeoutMs) * time.Millisecond
	return console.New(endpoint, cfg.Servers, callTimeout).Run(ctx)
}

// init registers the console command and its flags with the root command.
func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().StringVar(&consoleEndpoint, "endpoint", "", "Server endpoint URL (default: from config)")
	consoleCmd.Flags().BoolVar(&consoleDebug, "debug", false, "Enable debug logging")
	consoleCmd.Flags().StringVar(&consoleConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}
