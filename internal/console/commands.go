package console

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

// errExit signals a clean shutdown from the exit command.
var errExit = errors.New("exit")

// commandTimeout bounds a single command so a hung server or upstream cannot
// wedge the session.
const commandTimeout = 5 * time.Minute

// dispatch parses one input line and runs the matching command.
func (c *Console) dispatch(ctx context.Context, input string) error {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	name := strings.ToLower(fields[0])
	if name == "?" {
		name = "help"
	}

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	switch name {
	case "help":
		c.printHelp()
		return nil
	case "exit", "quit":
		return errExit
	case "run":
		// Everything after the command word is code, whitespace included.
		_, code := splitArgs(input, 1)
		if code == "" {
			var err error
			if code, err = c.readBlock(); err != nil {
				return err
			}
			if strings.TrimSpace(code) == "" {
				return fmt.Errorf("no code entered")
			}
		}
		return c.runCode(cmdCtx, code)
	case "search":
		return c.search(cmdCtx, fields[1:])
	case "info":
		return c.info(cmdCtx, fields[1:])
	case "tools":
		return c.tools(cmdCtx)
	case "health":
		return c.health(cmdCtx)
	case "call":
		return c.call(cmdCtx, input)
	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", fields[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `Commands:
  run <code>                     execute code on the server
  run                            open a multi-line block, finish with 'end'
  search <query> [server=NAME] [detail=name|description|full]
                                 search the tool catalog
  info <server> <tool> [detail=name|description|full]
                                 show one tool
  tools                          list the full catalog
  health                         show server status
  call <server> <tool> [json]    invoke an upstream tool directly
  exit                           leave the console
`)
}

func (c *Console) runCode(ctx context.Context, code string) error {
	res, err := c.api.Execute(ctx, code, "", 0)
	if err != nil {
		return err
	}

	if res.Error != "" {
		fmt.Fprintln(c.out, text.FgRed.Sprintf("execution error: %s", res.Error))
	}
	if res.Output != "" {
		fmt.Fprint(c.out, res.Output)
		if !strings.HasSuffix(res.Output, "\n") {
			fmt.Fprintln(c.out)
		}
	}

	note := ""
	if res.Truncated {
		note = ", output truncated"
	}
	fmt.Fprintf(c.out, "(%dms, %d bytes, ~%d tokens%s)\n",
		res.ExecutionTime, res.Metrics.OutputBytes, res.Metrics.TokensEstimate, note)
	return nil
}

func (c *Console) search(ctx context.Context, args []string) error {
	query, filters := splitFilters(args)

	res, err := c.api.Search(ctx, query, filters["server"], filters["detail"])
	if err != nil {
		return err
	}

	if res.Count == 0 {
		fmt.Fprintln(c.out, "No tools matched.")
		return nil
	}

	renderToolsTable(c.out, res.Results)
	fmt.Fprintf(c.out, "%d tools, ~%d tokens at %q tier (%.0f%% saved vs full)\n",
		res.Count, tierTokens(res.TokenSavings), res.TokenSavings.CurrentLevel,
		res.TokenSavings.SavingsVsFull*100)
	return nil
}

func (c *Console) info(ctx context.Context, args []string) error {
	names, filters := splitFilters(args)
	parts := strings.Fields(names)
	if len(parts) != 2 {
		return fmt.Errorf("usage: info <server> <tool> [detail=name|description|full]")
	}

	res, err := c.api.Info(ctx, parts[0], parts[1], filters["detail"])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s/%s\n", res.Tool.Server, res.Tool.Name)
	if res.Tool.Description != "" {
		fmt.Fprintf(c.out, "  %s\n", res.Tool.Description)
	}
	if res.Tool.Signature != "" {
		fmt.Fprintf(c.out, "  %s\n", res.Tool.Signature)
	}
	if res.Tool.Source != "" {
		fmt.Fprintf(c.out, "\n%s\n", res.Tool.Source)
	}
	fmt.Fprintf(c.out, "(~%d tokens)\n", res.TokenEstimate)
	return nil
}

func (c *Console) tools(ctx context.Context) error {
	res, err := c.api.Search(ctx, "", "", "description")
	if err != nil {
		return err
	}

	if res.Count == 0 {
		fmt.Fprintln(c.out, "No tools generated yet. Run 'toolbench generate' first.")
		return nil
	}

	renderToolsTable(c.out, res.Results)
	fmt.Fprintf(c.out, "%d tools\n", res.Count)
	return nil
}

func (c *Console) health(ctx context.Context) error {
	res, err := c.api.Health(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "status: %s\n", res.Status)
	fmt.Fprintf(c.out, "servers: %d, tools: %d\n", res.Servers, res.TotalTools)

	servers := make([]string, 0, len(res.ToolsByServer))
	for name := range res.ToolsByServer {
		servers = append(servers, name)
	}
	sort.Strings(servers)
	for _, name := range servers {
		fmt.Fprintf(c.out, "  %s: %d\n", name, res.ToolsByServer[name])
	}
	return nil
}

func (c *Console) call(ctx context.Context, input string) error {
	tokens, rest := splitArgs(input, 3)
	if len(tokens) < 3 {
		return fmt.Errorf("usage: call <server> <tool> [json-args]")
	}
	server, tool := tokens[1], tokens[2]

	args := map[string]interface{}{}
	if rest != "" {
		if err := json.Unmarshal([]byte(rest), &args); err != nil {
			return fmt.Errorf("arguments must be a JSON object: %w", err)
		}
	}

	result, err := c.pool.CallTool(ctx, server, tool, args)
	if err != nil {
		return err
	}

	if result == "" {
		fmt.Fprintln(c.out, "(no content)")
		return nil
	}
	fmt.Fprintln(c.out, result)
	return nil
}

// splitArgs pops the first n whitespace-separated tokens off input and
// returns them with the raw remainder, inner whitespace preserved.
func splitArgs(input string, n int) ([]string, string) {
	tokens := make([]string, 0, n)
	rest := input
	for i := 0; i < n; i++ {
		rest = strings.TrimLeft(rest, " \t")
		cut := strings.IndexAny(rest, " \t")
		if cut < 0 {
			if rest != "" {
				tokens = append(tokens, rest)
			}
			return tokens, ""
		}
		tokens = append(tokens, rest[:cut])
		rest = rest[cut:]
	}
	return tokens, strings.TrimSpace(rest)
}

// splitFilters separates key=value filter tokens from free-text words. The
// words rejoin into the query string.
func splitFilters(args []string) (string, map[string]string) {
	filters := make(map[string]string)
	var words []string
	for _, arg := range args {
		if key, value, ok := strings.Cut(arg, "="); ok && key != "" {
			filters[strings.ToLower(key)] = value
			continue
		}
		words = append(words, arg)
	}
	return strings.Join(words, " "), filters
}

// tierTokens returns the token cost of the tier the savings report was
// computed for.
func tierTokens(s tokenSavings) int {
	switch s.CurrentLevel {
	case "description":
		return s.Description
	case "full":
		return s.Full
	default:
		return s.Name
	}
}
