package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"toolbench/pkg/logging"
)

// ToolDescriptor is one scanned wrapper unit.
type ToolDescriptor struct {
	// Server is the upstream server the wrapper belongs to.
	Server string
	// Name is the upstream tool name.
	Name string
	// Description is the text of the doc comment above the wrapper function.
	Description string
	// Signature is the exported function declaration line.
	Signature string
	// Source is the entire generated file.
	Source string
}

// wrapperExt is the extension of generated wrapper units.
const wrapperExt = ".ts"

// Scan walks the wrapper tree and parses every tool unit. Layout is
// <dir>/<server>/<tool>.ts; per-server index files and the shared runtime
// files at the top level are not tool units. A missing tree yields an empty
// catalog, not an error.
func Scan(dir string) ([]ToolDescriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var descriptors []ToolDescriptor
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		server := entry.Name()

		serverDir := filepath.Join(dir, server)
		files, err := os.ReadDir(serverDir)
		if err != nil {
			logging.Warn("Catalog", "Skipping unreadable server directory %s: %v", serverDir, err)
			continue
		}

		for _, file := range files {
			name := file.Name()
			if file.IsDir() || !strings.HasSuffix(name, wrapperExt) || name == "index"+wrapperExt {
				continue
			}

			path := filepath.Join(serverDir, name)
			content, err := os.ReadFile(path)
			if err != nil {
				logging.Warn("Catalog", "Skipping unreadable wrapper %s: %v", path, err)
				continue
			}

			descriptors = append(descriptors, parseWrapper(server, name, string(content)))
		}
	}

	sort.Slice(descriptors, func(i, j int) bool {
		if descriptors[i].Server != descriptors[j].Server {
			return descriptors[i].Server < descriptors[j].Server
		}
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors, nil
}

// parseWrapper extracts the descriptor fields from one generated wrapper.
// The format is what the generator emits: a "// Tool:" header line, a doc
// comment block directly above the exported async function, and the function
// declaration itself. Files that drifted from that shape still yield a
// descriptor; missing pieces stay empty rather than failing the scan.
func parseWrapper(server, filename, content string) ToolDescriptor {
	descriptor := ToolDescriptor{
		Server: server,
		Name:   strings.TrimSuffix(filename, wrapperExt),
		Source: content,
	}

	lines := strings.Split(content, "\n")
	functionLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if toolName, ok := strings.CutPrefix(trimmed, "// Tool: "); ok {
			descriptor.Name = toolName
		}
		if strings.HasPrefix(trimmed, "export async function ") {
			descriptor.Signature = strings.TrimSuffix(trimmed, " {")
			functionLine = i
			break
		}
	}

	if functionLine > 0 {
		descriptor.Description = docCommentAbove(lines, functionLine)
	}
	return descriptor
}

// docCommentAbove collects the block comment that ends on the line directly
// above lines[functionLine], walking back to its opener.
func docCommentAbove(lines []string, functionLine int) string {
	end := functionLine - 1
	if end < 0 || strings.TrimSpace(lines[end]) != "*/" {
		return ""
	}

	var collected []string
	for i := end - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "/**" {
			// Reverse into declaration order.
			for left, right := 0, len(collected)-1; left < right; left, right = left+1, right-1 {
				collected[left], collected[right] = collected[right], collected[left]
			}
			return strings.TrimSpace(strings.Join(collected, "\n"))
		}
		collected = append(collected, strings.TrimSpace(strings.TrimPrefix(trimmed, "*")))
	}
	return ""
}
