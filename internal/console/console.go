package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"toolbench/internal/config"
	"toolbench/internal/toolclient"

	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	prompt      = "toolbench » "
	blockPrompt = "      ... "

	// blockTerminator ends a multi-line run block.
	blockTerminator = "end"

	// historyFileName keeps command history across sessions.
	historyFileName = ".toolbench_history"
)

// Console is an interactive session against a running toolbench server.
type Console struct {
	api  *apiClient
	pool *toolclient.Pool
	out  io.Writer
	rl   *readline.Instance
}

// New creates a console for the given endpoint. The configured servers back
// the call command, which invokes upstream tools directly instead of going
// through the REST surface.
func New(endpoint string, servers []config.ServerConfig, callTimeout time.Duration) *Console {
	return &Console{
		api:  newAPIClient(endpoint),
		pool: toolclient.NewPool(servers, callTimeout),
		out:  os.Stdout,
	}
}

// Run starts the interactive loop and blocks until the user exits, the input
// stream ends or the context is canceled.
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       filepath.Join(os.TempDir(), historyFileName),
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	c.rl = rl

	defer c.pool.CloseAll()

	fmt.Fprintf(c.out, "Connected to %s\n", c.api.endpoint)
	fmt.Fprintln(c.out, "Type 'help' for available commands. Use TAB for completion.")
	fmt.Fprintln(c.out)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := c.dispatch(ctx, input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(c.out, "Goodbye!")
				return nil
			}
			fmt.Fprintln(c.out, text.FgRed.Sprintf("Error: %v", err))
		}
		fmt.Fprintln(c.out)
	}
}

// readBlock collects lines until a bare terminator, for multi-line snippets
// pasted after a plain run command.
func (c *Console) readBlock() (string, error) {
	if c.rl == nil {
		return "", fmt.Errorf("multi-line input requires an interactive session")
	}

	c.rl.SetPrompt(blockPrompt)
	defer c.rl.SetPrompt(prompt)

	var lines []string
	for {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			return "", fmt.Errorf("input canceled")
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("readline error: %w", err)
		}
		if strings.TrimSpace(line) == blockTerminator {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// completer builds the tab completion tree for the command set.
func completer() *readline.PrefixCompleter {
	detailLevels := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{
			readline.PcItem("detail=name"),
			readline.PcItem("detail=description"),
			readline.PcItem("detail=full"),
		}
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("?"),
		readline.PcItem("run"),
		readline.PcItem("search", detailLevels()...),
		readline.PcItem("info", detailLevels()...),
		readline.PcItem("tools"),
		readline.PcItem("health"),
		readline.PcItem("call"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}
