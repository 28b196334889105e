package generator

import (
	"context"
	"sort"

	"toolbench/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolLister is the slice of the tool client the generator needs.
type ToolLister interface {
	Servers() []string
	ListTools(ctx context.Context, server string) ([]mcp.Tool, error)
}

// ToolSpec is one upstream tool as the templates consume it.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]interface{}
}

// ServerCatalog is the fetched tool catalog of one upstream server, tools
// sorted by name.
type ServerCatalog struct {
	Name  string
	Tools []ToolSpec
}

// toCatalog converts listed tools into the template model. Tools whose names
// cannot become file names are dropped with a warning.
func toCatalog(server string, tools []mcp.Tool) ServerCatalog {
	cat := ServerCatalog{Name: server}
	for _, tool := range tools {
		if !safeToolName(tool.Name) {
			logging.Warn("Generator", "Dropping tool %q on %s: name is not filesystem-safe", tool.Name, server)
			continue
		}
		cat.Tools = append(cat.Tools, ToolSpec{
			Name:        tool.Name,
			Description: tool.Description,
			Schema:      schemaMap(tool.InputSchema),
		})
	}
	sort.Slice(cat.Tools, func(i, j int) bool {
		return cat.Tools[i].Name < cat.Tools[j].Name
	})
	return cat
}

// schemaMap flattens the typed MCP input schema into the generic node shape
// the type mapper walks.
func schemaMap(schema mcp.ToolInputSchema) map[string]interface{} {
	node := map[string]interface{}{"type": "object"}
	if schema.Type != "" {
		node["type"] = schema.Type
	}
	if len(schema.Properties) > 0 {
		node["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		node["required"] = schema.Required
	}
	return node
}
