package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a config.yaml inside dir.
func writeConfigFile(t *testing.T, dir string, content ToolbenchConfig) {
	t.Helper()
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), data, 0644))
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.HTTP, cfg.HTTP)
	assert.Equal(t, defaults.Execution, cfg.Execution)
	assert.Equal(t, defaults.ToolCall, cfg.ToolCall)
	assert.Empty(t, cfg.Servers)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, ToolbenchConfig{
		HTTP: HTTPConfig{Host: "0.0.0.0", Port: 9999},
		Execution: ExecutionConfig{
			DefaultTimeoutMs: 5000,
		},
		Servers: []ServerConfig{
			{Name: "github", URL: "http://localhost:3001/mcp"},
		},
	})

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.Equal(t, 5000, cfg.Execution.DefaultTimeoutMs)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "github", cfg.Servers[0].Name)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, GetDefaultConfig().Execution.MaxTimeoutMs, cfg.Execution.MaxTimeoutMs)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, configFileName), []byte("servers: [unclosed"), 0644))

	_, err := LoadConfig(tempDir)
	assert.Error(t, err)
}

func TestLoadConfig_HeaderEnvExpansion(t *testing.T) {
	t.Setenv("TOOLBENCH_TEST_TOKEN", "s3cret")

	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, ToolbenchConfig{
		Servers: []ServerConfig{
			{
				Name: "github",
				URL:  "http://localhost:3001/mcp",
				Headers: map[string]string{
					"Authorization": "Bearer ${TOOLBENCH_TEST_TOKEN}",
				},
			},
		},
	})

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", cfg.Servers[0].Headers["Authorization"])
}

func TestEffectiveScratchDir(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, cfg.Workspace.Dir, cfg.EffectiveScratchDir())

	cfg.Workspace.ScratchDir = "/tmp/scratch"
	assert.Equal(t, "/tmp/scratch", cfg.EffectiveScratchDir())
}

func TestWrapperDir(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Workspace.Dir = "/data/toolbench"
	assert.Equal(t, filepath.Join("/data/toolbench", "servers"), cfg.WrapperDir())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ToolbenchConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *ToolbenchConfig) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *ToolbenchConfig) { c.HTTP.Port = 0 },
			wantErr: "http.port",
		},
		{
			name:    "empty workspace",
			mutate:  func(c *ToolbenchConfig) { c.Workspace.Dir = "" },
			wantErr: "workspace.dir",
		},
		{
			name:    "default timeout above max",
			mutate:  func(c *ToolbenchConfig) { c.Execution.DefaultTimeoutMs = c.Execution.MaxTimeoutMs + 1 },
			wantErr: "defaultTimeoutMs",
		},
		{
			name:    "empty interpreter command",
			mutate:  func(c *ToolbenchConfig) { c.Execution.TypescriptCommand = nil },
			wantErr: "interpreter commands",
		},
		{
			name: "server without url",
			mutate: func(c *ToolbenchConfig) {
				c.Servers = []ServerConfig{{Name: "github"}}
			},
			wantErr: "url must not be empty",
		},
		{
			name: "unsupported transport",
			mutate: func(c *ToolbenchConfig) {
				c.Servers = []ServerConfig{{Name: "github", URL: "http://x", Transport: "carrier-pigeon"}}
			},
			wantErr: "unsupported transport",
		},
		{
			name: "duplicate server names",
			mutate: func(c *ToolbenchConfig) {
				c.Servers = []ServerConfig{
					{Name: "github", URL: "http://a"},
					{Name: "github", URL: "http://b"},
				}
			},
			wantErr: "duplicate name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
