package generator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"toolbench/internal/catalog"
	"toolbench/internal/config"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	tools map[string][]mcp.Tool
	errs  map[string]error
}

func (f *fakeLister) Servers() []string {
	names := make([]string, 0, len(f.tools)+len(f.errs))
	for name := range f.tools {
		names = append(names, name)
	}
	for name := range f.errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *fakeLister) ListTools(ctx context.Context, server string) ([]mcp.Tool, error) {
	if err, ok := f.errs[server]; ok {
		return nil, err
	}
	return f.tools[server], nil
}

func githubTools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "list_issues",
			Description: "List open issues.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"repo": map[string]interface{}{
						"type":        "string",
						"description": "Repository in owner/name form.",
					},
				},
				Required: []string{"repo"},
			},
		},
		{
			Name:        "create_issue",
			Description: "Create a new issue.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"title": map[string]interface{}{"type": "string"},
					"body": map[string]interface{}{
						"type":        "string",
						"description": "The issue body.",
					},
				},
				Required: []string{"title"},
			},
		},
	}
}

func postgresTools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "run_query",
			Description: "Run a SQL query against the database.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"sql": map[string]interface{}{"type": "string"},
				},
				Required: []string{"sql"},
			},
		},
	}
}

func testServerConfigs() []config.ServerConfig {
	return []config.ServerConfig{
		{
			Name:      "github",
			URL:       "http://localhost:3001/mcp",
			Transport: config.TransportStreamableHTTP,
			Headers:   map[string]string{"Authorization": "Bearer test-token"},
		},
		{
			Name:      "postgres",
			URL:       "http://localhost:3002/mcp",
			Transport: config.TransportStreamableHTTP,
		},
	}
}

func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()

	tree := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		tree[rel] = string(content)
		return nil
	})
	require.NoError(t, err)
	return tree
}

func TestRenderWrapperGolden(t *testing.T) {
	tool := ToolSpec{
		Name:        "create_issue",
		Description: "Create a new issue.",
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{"type": "string"},
				"body": map[string]interface{}{
					"type":        "string",
					"description": "The issue body.",
				},
			},
			"required": []string{"title"},
		},
	}

	content, err := renderWrapper("github", tool)
	require.NoError(t, err)

	want := `// Code generated by toolbench. DO NOT EDIT.
// Server: github
// Tool: create_issue

import { callTool } from "../client";

export interface CreateIssueInput {
  /** The issue body. */
  body?: string;
  title: string;
}

/**
 * Create a new issue.
 */
export async function createIssue(input: CreateIssueInput): Promise<unknown> {
  return callTool("github", "create_issue", input);
}
`
	assert.Equal(t, want, content)
}

func TestRenderWrapperNoDescription(t *testing.T) {
	tool := ToolSpec{
		Name:   "ping",
		Schema: map[string]interface{}{"type": "object"},
	}

	content, err := renderWrapper("demo", tool)
	require.NoError(t, err)

	assert.NotContains(t, content, "/**")
	assert.Contains(t, content, "export async function ping(input: PingInput = {}): Promise<unknown> {")
}

func TestRenderWrapperParsesBackCleanly(t *testing.T) {
	tool := ToolSpec{
		Name:        "run_query",
		Description: "Run a SQL query.\nResults come back as JSON rows.",
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"sql": map[string]interface{}{"type": "string"},
			},
			"required": []string{"sql"},
		},
	}

	content, err := renderWrapper("postgres", tool)
	require.NoError(t, err)

	// The disclosure index parses wrappers back out of the tree; the emitted
	// shape and the parser must agree.
	descriptors, scanErr := catalog.Scan(writeRendered(t, "postgres", "run_query.ts", content))
	require.NoError(t, scanErr)
	require.Len(t, descriptors, 1)

	d := descriptors[0]
	assert.Equal(t, "run_query", d.Name)
	assert.Equal(t, "Run a SQL query.\nResults come back as JSON rows.", d.Description)
	assert.Equal(t, "export async function runQuery(input: RunQueryInput): Promise<unknown>", d.Signature)
	assert.Equal(t, content, d.Source)
}

func writeRendered(t *testing.T, server, file, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, server), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, server, file), []byte(content), 0644))
	return dir
}

func TestRenderServerIncludesSortedIndex(t *testing.T) {
	cat := toCatalog("github", githubTools())

	files, err := RenderServer(cat)
	require.NoError(t, err)

	require.Contains(t, files, "index.ts")
	require.Contains(t, files, "create_issue.ts")
	require.Contains(t, files, "list_issues.ts")

	index := files["index.ts"]
	assert.True(t, strings.HasPrefix(index, generatedHeader), "index must carry the generated header")
	createPos := strings.Index(index, `export * from "./create_issue";`)
	listPos := strings.Index(index, `export * from "./list_issues";`)
	require.GreaterOrEqual(t, createPos, 0)
	require.GreaterOrEqual(t, listPos, 0)
	assert.Less(t, createPos, listPos, "index exports must be sorted by tool name")
}

func TestRenderRuntime(t *testing.T) {
	content, err := RenderRuntime(testServerConfigs(), 30*time.Second)
	require.NoError(t, err)

	assert.Contains(t, content, `"github": {`)
	assert.Contains(t, content, `url: "http://localhost:3001/mcp"`)
	assert.Contains(t, content, `"Authorization": "Bearer test-token"`)
	assert.Contains(t, content, "const CALL_TIMEOUT_MS = 30000;")
	assert.Contains(t, content, "export class TransportError extends Error")
	assert.Contains(t, content, "export class ProtocolError extends Error")
	assert.Contains(t, content, "export class ToolError extends Error")
	assert.Contains(t, content, "export async function callTool(")
}

func TestRenderDiscovery(t *testing.T) {
	descriptors := []catalog.ToolDescriptor{
		{Server: "github", Name: "create_issue", Description: "Create a new issue."},
		{Server: "postgres", Name: "run_query", Description: `Run "raw" SQL.`},
	}

	content, err := RenderDiscovery(descriptors)
	require.NoError(t, err)

	assert.Contains(t, content, `{ server: "github", tool: "create_issue", description: "Create a new issue." },`)
	assert.Contains(t, content, `description: "Run \"raw\" SQL."`)
	assert.Contains(t, content, "export function listServers(): string[]")
	assert.Contains(t, content, "export function listTools(server: string): string[]")
	assert.Contains(t, content, "export function searchTools(query: string): CatalogEntry[]")
}

func TestGenerateWritesTree(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{tools: map[string][]mcp.Tool{
		"github":   githubTools(),
		"postgres": postgresTools(),
	}}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	result, err := g.Generate(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.GeneratedServers)
	assert.Equal(t, 3, result.GeneratedTools)
	assert.Equal(t, map[string]int{"github": 2, "postgres": 1}, result.ToolsByServer)
	assert.Empty(t, result.Skipped)

	tree := readTree(t, dir)
	assert.Contains(t, tree, "client.ts")
	assert.Contains(t, tree, "discovery.ts")
	assert.Contains(t, tree, filepath.Join("github", "index.ts"))
	assert.Contains(t, tree, filepath.Join("github", "create_issue.ts"))
	assert.Contains(t, tree, filepath.Join("github", "list_issues.ts"))
	assert.Contains(t, tree, filepath.Join("postgres", "run_query.ts"))

	for name, content := range tree {
		assert.True(t, strings.HasPrefix(content, generatedHeader), "%s must carry the generated header", name)
		assert.True(t, strings.HasSuffix(content, "\n"), "%s must end with a newline", name)
	}

	assert.Contains(t, tree["discovery.ts"], `tool: "create_issue"`)
	assert.Contains(t, tree["discovery.ts"], `tool: "run_query"`)
}

// TestGenerateIsIdempotent verifies a second run against an unchanged
// upstream produces byte-identical files.
func TestGenerateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{tools: map[string][]mcp.Tool{
		"github":   githubTools(),
		"postgres": postgresTools(),
	}}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	_, err := g.Generate(context.Background(), Options{})
	require.NoError(t, err)
	first := readTree(t, dir)

	_, err = g.Generate(context.Background(), Options{})
	require.NoError(t, err)
	second := readTree(t, dir)

	assert.Equal(t, first, second)
}

func TestGenerateSkipsEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{tools: map[string][]mcp.Tool{
		"github": githubTools(),
		"empty":  {},
	}}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	result, err := g.Generate(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.GeneratedServers)
	assert.Equal(t, []string{"empty"}, result.Skipped)

	_, statErr := os.Stat(filepath.Join(dir, "empty"))
	assert.True(t, os.IsNotExist(statErr), "an empty catalog must not create a directory")
}

func TestGenerateSkipsUnreachableServer(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{
		tools: map[string][]mcp.Tool{"github": githubTools()},
		errs:  map[string]error{"down": errors.New("connection refused")},
	}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	result, err := g.Generate(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.GeneratedServers)
	assert.Equal(t, []string{"down"}, result.Skipped)
}

func TestGenerateStrictAbortsOnFailure(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{
		tools: map[string][]mcp.Tool{"github": githubTools()},
		errs:  map[string]error{"down": errors.New("connection refused")},
	}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	_, err := g.Generate(context.Background(), Options{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}

func TestGenerateServerSubsetKeepsDiscovery(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{tools: map[string][]mcp.Tool{
		"github":   githubTools(),
		"postgres": postgresTools(),
	}}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	_, err := g.Generate(context.Background(), Options{})
	require.NoError(t, err)

	result, err := g.Generate(context.Background(), Options{Servers: []string{"github"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.GeneratedServers)

	// Discovery reflects the whole live tree, not just the regenerated
	// subset.
	discovery, readErr := os.ReadFile(filepath.Join(dir, "discovery.ts"))
	require.NoError(t, readErr)
	assert.Contains(t, string(discovery), `tool: "run_query"`)
}

func TestGenerateUnknownServerRequested(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{tools: map[string][]mcp.Tool{"github": githubTools()}}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	_, err := g.Generate(context.Background(), Options{Servers: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown server")
}

func TestGenerateLeavesNoStagingBehind(t *testing.T) {
	dir := t.TempDir()
	lister := &fakeLister{tools: map[string][]mcp.Tool{"github": githubTools()}}
	g := New(lister, testServerConfigs(), dir, 30*time.Second)

	_, err := g.Generate(context.Background(), Options{})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".staging-"), "staging directory %s left behind", entry.Name())
	}
}
