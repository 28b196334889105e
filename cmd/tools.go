package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"toolbench/internal/catalog"
	"toolbench/internal/config"
	"toolbench/internal/console"
	"toolbench/pkg/logging"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	toolsOutputFormat string
	toolsSearch       string
	toolsServer       string
	toolsConfigPath   string
)

// toolsCmd lists the generated wrapper catalog straight from the workspace
// directory. It never contacts a server, so it works while nothing is
// running and reflects exactly what executed code can import.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List generated tool wrappers",
	Long: `List the tool wrappers currently generated in the workspace.

The catalog is read from the wrapper tree on disk, not from a running
server. An empty listing usually means 'toolbench generate' has not run
yet.

Examples:
  toolbench tools
  toolbench tools --search cluster
  toolbench tools --server github -o json
  toolbench tools -o yaml`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

// runTools is the main entry point for the tools command
func runTools(cmd *cobra.Command, args []string) error {
	// Malformed wrapper files surface as warnings while scanning.
	logging.InitForCLI(logging.LevelWarn, os.Stderr)

	cfg, err := config.LoadConfig(toolsConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	index := catalog.NewIndex(cfg.WrapperDir())
	views, _, err := index.Search(toolsSearch, toolsServer, catalog.DetailDescription)
	if err != nil {
		return fmt.Errorf("reading wrapper catalog: %w", err)
	}

	return writeToolList(cmd.OutOrStdout(), views, toolsOutputFormat, toolsSearch != "" || toolsServer != "")
}

// writeToolList renders catalog views in the requested output format.
// filtered switches the empty-result message between "nothing generated"
// and "nothing matched".
func writeToolList(out io.Writer, views []catalog.ToolView, format string, filtered bool) error {
	if views == nil {
		views = []catalog.ToolView{}
	}

	switch format {
	case "table":
		if len(views) == 0 {
			if filtered {
				fmt.Fprintln(out, "No tools matched.")
			} else {
				fmt.Fprintln(out, "No tools generated yet. Run 'toolbench generate' first.")
			}
			return nil
		}
		console.RenderCatalog(out, views)
		return nil
	case "json":
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(views)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (expected table, json or yaml)", format)
	}
}

// init registers the tools command and its flags with the root command.
func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().StringVarP(&toolsOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	toolsCmd.Flags().StringVar(&toolsSearch, "search", "", "Filter tools by name or description substring")
	toolsCmd.Flags().StringVar(&toolsServer, "server", "", "Filter tools by server name")
	toolsCmd.Flags().StringVar(&toolsConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
}
