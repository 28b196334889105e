package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ToolbenchConfig is the top-level configuration structure for toolbench.
type ToolbenchConfig struct {
	HTTP      HTTPConfig      `yaml:"http,omitempty"`
	Workspace WorkspaceConfig `yaml:"workspace,omitempty"`
	Execution ExecutionConfig `yaml:"execution,omitempty"`
	ToolCall  ToolCallConfig  `yaml:"toolCall,omitempty"`
	Servers   []ServerConfig  `yaml:"servers,omitempty"`
}

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
)

// HTTPConfig defines where the REST surface binds.
type HTTPConfig struct {
	Host string `yaml:"host,omitempty"` // Host to bind to (default: localhost)
	Port int    `yaml:"port,omitempty"` // Port for the REST endpoint (default: 8090)
}

// WorkspaceConfig defines the filesystem layout shared by the wrapper
// generator, the disclosure index and the execution engine.
type WorkspaceConfig struct {
	// Dir is the workspace root. The generated wrapper tree lives at
	// <Dir>/servers. Default: ~/.local/share/toolbench
	Dir string `yaml:"dir,omitempty"`
	// ScratchDir is where per-request scratch files are written.
	// Defaults to Dir so relative imports of ./servers/... resolve.
	ScratchDir string `yaml:"scratchDir,omitempty"`
}

// ExecutionConfig bounds what a single /execute request may do.
type ExecutionConfig struct {
	DefaultTimeoutMs  int      `yaml:"defaultTimeoutMs,omitempty"`  // applied when the request omits timeout (default: 120000)
	MaxTimeoutMs      int      `yaml:"maxTimeoutMs,omitempty"`      // upper bound for requested timeouts (default: 300000)
	MaxCodeBytes      int      `yaml:"maxCodeBytes,omitempty"`      // request body code limit (default: 1 MiB)
	MaxOutputBytes    int      `yaml:"maxOutputBytes,omitempty"`    // combined stdout+stderr capture cap (default: 1 MiB)
	TypescriptCommand []string `yaml:"typescriptCommand,omitempty"` // interpreter argv for typescript (default: ["npx", "tsx"])
	PythonCommand     []string `yaml:"pythonCommand,omitempty"`     // interpreter argv for python (default: ["python3"])
}

// ToolCallConfig bounds a single upstream tool call.
type ToolCallConfig struct {
	// TimeoutMs is the inner per-call timeout, independent of any outer
	// execution timeout (default: 30000).
	TimeoutMs int `yaml:"timeoutMs,omitempty"`
}

// ServerConfig describes one upstream MCP server.
type ServerConfig struct {
	Name      string            `yaml:"name"`
	URL       string            `yaml:"url"`
	Transport string            `yaml:"transport,omitempty"` // streamable-http (default) or sse
	Headers   map[string]string `yaml:"headers,omitempty"`   // static headers; values support ${VAR} expansion
}

// GetDefaultConfig returns the default configuration for toolbench.
func GetDefaultConfig() ToolbenchConfig {
	return ToolbenchConfig{
		HTTP: HTTPConfig{
			Host: "localhost",
			Port: 8090,
		},
		Workspace: WorkspaceConfig{
			Dir: defaultWorkspaceDir(),
		},
		Execution: ExecutionConfig{
			DefaultTimeoutMs:  120000,
			MaxTimeoutMs:      300000,
			MaxCodeBytes:      1 << 20,
			MaxOutputBytes:    1 << 20,
			TypescriptCommand: []string{"npx", "tsx"},
			PythonCommand:     []string{"python3"},
		},
		ToolCall: ToolCallConfig{
			TimeoutMs: 30000,
		},
	}
}

func defaultWorkspaceDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// No home directory (containers, stripped environments); fall
		// back to a workspace under the system temp dir.
		return filepath.Join(os.TempDir(), "toolbench")
	}
	return filepath.Join(homeDir, ".local", "share", "toolbench")
}

// EffectiveScratchDir returns the scratch directory, falling back to the
// workspace root when unset.
func (c *ToolbenchConfig) EffectiveScratchDir() string {
	if c.Workspace.ScratchDir != "" {
		return c.Workspace.ScratchDir
	}
	return c.Workspace.Dir
}

// WrapperDir returns the root of the generated wrapper tree.
func (c *ToolbenchConfig) WrapperDir() string {
	return filepath.Join(c.Workspace.Dir, "servers")
}

// Validate checks the configuration for contradictions that would only
// surface later as confusing runtime failures.
func (c *ToolbenchConfig) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.Workspace.Dir == "" {
		return fmt.Errorf("workspace.dir must not be empty")
	}
	if c.Execution.DefaultTimeoutMs < 1000 || c.Execution.DefaultTimeoutMs > c.Execution.MaxTimeoutMs {
		return fmt.Errorf("execution.defaultTimeoutMs %d outside [1000, %d]",
			c.Execution.DefaultTimeoutMs, c.Execution.MaxTimeoutMs)
	}
	if c.Execution.MaxTimeoutMs < 1000 {
		return fmt.Errorf("execution.maxTimeoutMs %d below minimum 1000", c.Execution.MaxTimeoutMs)
	}
	if len(c.Execution.TypescriptCommand) == 0 || len(c.Execution.PythonCommand) == 0 {
		return fmt.Errorf("execution interpreter commands must not be empty")
	}
	if c.ToolCall.TimeoutMs <= 0 {
		return fmt.Errorf("toolCall.timeoutMs must be positive")
	}

	seen := make(map[string]bool, len(c.Servers))
	for i, srv := range c.Servers {
		if srv.Name == "" {
			return fmt.Errorf("servers[%d]: name must not be empty", i)
		}
		if srv.URL == "" {
			return fmt.Errorf("server %q: url must not be empty", srv.Name)
		}
		switch srv.Transport {
		case "", TransportStreamableHTTP, TransportSSE:
		default:
			return fmt.Errorf("server %q: unsupported transport %q", srv.Name, srv.Transport)
		}
		if seen[srv.Name] {
			return fmt.Errorf("server %q: duplicate name", srv.Name)
		}
		seen[srv.Name] = true
	}
	return nil
}
