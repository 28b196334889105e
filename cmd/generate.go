package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"toolbench/internal/config"
	"toolbench/internal/generator"
	"toolbench/internal/toolclient"
	"toolbench/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// generateStrict aborts the run when any configured server cannot be reached,
// instead of skipping it.
var generateStrict bool

// generateServers restricts generation to the named servers.
// Empty means all configured servers.
var generateServers []string

// generateQuiet suppresses the progress spinner and the summary.
// Failures still report through the exit code and stderr.
var generateQuiet bool

// generateDebug enables verbose logging for the generation run.
var generateDebug bool

// generateConfigPath specifies a custom configuration directory path.
var generateConfigPath string

// generateCmd defines the generate command structure.
// It connects to every configured MCP server, lists its tools and writes the
// typed wrapper tree that executed code imports from.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate typed wrappers for the configured MCP servers",
	Long: `Connects to every configured MCP server, lists its tools and writes one
typed TypeScript wrapper per tool under <workspace>/servers/<server>/.

Each server's directory is swapped into place atomically, so an aborted
run never leaves a half-written tree. Unreachable servers are skipped
with a warning unless --strict is set, and --server limits the run to a
subset of the configured servers.

Generation is idempotent: an unchanged upstream catalog produces
byte-identical wrappers.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

// runGenerate is the main entry point for the generate command
func runGenerate(cmd *cobra.Command, args []string) error {
	level := logging.LevelWarn
	if generateDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	cfg, err := config.LoadConfig(generateConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if len(cfg.Servers) == 0 {
		return fmt.Errorf("no servers configured; add entries under 'servers:' in config.yaml")
	}

	callTimeout := time.Duration(cfg.ToolCall.TimeoutMs) * time.Millisecond
	pool := toolclient.NewPool(cfg.Servers, callTimeout)
	defer pool.CloseAll()

	gen := generator.New(pool, cfg.Servers, cfg.WrapperDir(), callTimeout)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := generator.Options{
		Strict:  generateStrict,
		Servers: generateServers,
	}

	if generateQuiet {
		_, err := gen.Generate(ctx, opts)
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Generating wrappers..."
	s.Start()

	result, err := gen.Generate(ctx, opts)
	if err != nil {
		s.FinalMSG = text.FgRed.Sprint("Wrapper generation failed") + "\n"
		s.Stop()
		return err
	}
	s.Stop()

	writeGenerateSummary(cmd.OutOrStdout(), result, cfg.WrapperDir())
	return nil
}

// writeGenerateSummary prints the per-server outcome of one generation run.
func writeGenerateSummary(out io.Writer, result *generator.Result, dir string) {
	if result.GeneratedServers == 0 {
		fmt.Fprintln(out, text.FgYellow.Sprint("No wrappers generated."))
	} else {
		fmt.Fprintf(out, "%s %d wrappers for %d server(s) in %s\n",
			text.FgGreen.Sprint("Generated"), result.GeneratedTools, result.GeneratedServers, dir)

		names := make([]string, 0, len(result.ToolsByServer))
		for name := range result.ToolsByServer {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-20s %d tools\n", name, result.ToolsByServer[name])
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "%s %s\n",
			text.FgYellow.Sprint("Skipped (unreachable or empty):"),
			strings.Join(result.Skipped, ", "))
	}
}

// init registers the generate command and its flags with the root command.
func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "Fail the run when any server cannot be reached")
	generateCmd.Flags().StringArrayVar(&generateServers, "server", nil, "Generate only for the named server (repeatable)")
	generateCmd.Flags().BoolVar(&generateQuiet, "quiet", false, "Suppress progress output")
	generateCmd.Flags().BoolVar(&generateDebug, "debug", false, "Enable debug logging")
	generateCmd.Flags().StringVar(&generateConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}
