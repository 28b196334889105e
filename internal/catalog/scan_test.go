package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWrapper writes a wrapper file in the generated format and returns its
// source text.
func writeWrapper(t *testing.T, dir, server, tool, description string) string {
	t.Helper()

	var doc string
	if description != "" {
		doc = fmt.Sprintf("/**\n * %s\n */\n", description)
	}
	source := fmt.Sprintf(`// Code generated by toolbench. DO NOT EDIT.
// Server: %[1]s
// Tool: %[2]s

import { callTool } from "../client";

export interface %[3]sInput {
  text?: string;
}

%[4]sexport async function %[5]s(input: %[3]sInput): Promise<unknown> {
  return callTool("%[1]s", "%[2]s", input);
}
`, server, tool, exportedName(tool), doc, lowerCamel(tool))

	serverDir := filepath.Join(dir, server)
	require.NoError(t, os.MkdirAll(serverDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(serverDir, tool+".ts"), []byte(source), 0644))
	return source
}

func exportedName(tool string) string {
	parts := strings.Split(tool, "_")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "")
}

func lowerCamel(tool string) string {
	name := exportedName(tool)
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func TestScanEmptyTree(t *testing.T) {
	descriptors, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func TestScanParsesWrappers(t *testing.T) {
	dir := t.TempDir()
	source := writeWrapper(t, dir, "github", "create_issue", "Create a new issue in a repository.")

	descriptors, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)

	d := descriptors[0]
	assert.Equal(t, "github", d.Server)
	assert.Equal(t, "create_issue", d.Name)
	assert.Equal(t, "Create a new issue in a repository.", d.Description)
	assert.Equal(t, "export async function createIssue(input: CreateIssueInput): Promise<unknown>", d.Signature)
	assert.Equal(t, source, d.Source)
}

func TestScanMissingDescription(t *testing.T) {
	dir := t.TempDir()
	writeWrapper(t, dir, "github", "ping", "")

	descriptors, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Empty(t, descriptors[0].Description)
	assert.Equal(t, "export async function ping(input: PingInput): Promise<unknown>", descriptors[0].Signature)
}

func TestScanSkipsNonToolFiles(t *testing.T) {
	dir := t.TempDir()
	writeWrapper(t, dir, "github", "create_issue", "Create an issue.")

	// Per-server index, shared runtime files and staging leftovers are not
	// tool units.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "github", "index.ts"), []byte("export * from './create_issue';\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "client.ts"), []byte("// runtime\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "discovery.ts"), []byte("// discovery\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".staging-abc123"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".staging-abc123", "old.ts"), []byte("// stale\n"), 0644))

	descriptors, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
	assert.Equal(t, "create_issue", descriptors[0].Name)
}

func TestScanSortsDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeWrapper(t, dir, "zulu", "alpha_tool", "a")
	writeWrapper(t, dir, "alpha", "zed_tool", "z")
	writeWrapper(t, dir, "alpha", "add_row", "add")

	descriptors, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, descriptors, 3)

	assert.Equal(t, "alpha", descriptors[0].Server)
	assert.Equal(t, "add_row", descriptors[0].Name)
	assert.Equal(t, "alpha", descriptors[1].Server)
	assert.Equal(t, "zed_tool", descriptors[1].Name)
	assert.Equal(t, "zulu", descriptors[2].Server)
}

func TestParseWrapperMultilineDescription(t *testing.T) {
	content := `// Code generated by toolbench. DO NOT EDIT.
// Server: demo
// Tool: long_doc

/**
 * First line.
 * Second line.
 */
export async function longDoc(input: LongDocInput): Promise<unknown> {
  return callTool("demo", "long_doc", input);
}
`
	d := parseWrapper("demo", "long_doc.ts", content)
	assert.Equal(t, "First line.\nSecond line.", d.Description)
}

func TestParseWrapperToolNameFallsBackToFilename(t *testing.T) {
	content := "export async function oddball(): Promise<unknown> {\n}\n"
	d := parseWrapper("demo", "oddball.ts", content)
	assert.Equal(t, "oddball", d.Name)
	assert.Equal(t, "export async function oddball(): Promise<unknown>", d.Signature)
}
