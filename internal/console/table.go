package console

import (
	"io"

	"toolbench/internal/catalog"
	pkgstrings "toolbench/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderCatalog prints catalog views in the console's table format. The
// tools subcommand shares this renderer so offline listings look the same
// as interactive ones.
func RenderCatalog(out io.Writer, views []catalog.ToolView) {
	entries := make([]toolEntry, 0, len(views))
	for _, v := range views {
		entries = append(entries, toolEntry{
			Server:      v.Server,
			Name:        v.Name,
			Description: v.Description,
			Signature:   v.Signature,
			Source:      v.Source,
		})
	}
	renderToolsTable(out, entries)
}

// renderToolsTable prints catalog entries as a rounded table. The description
// column only appears when at least one entry carries one, so name-tier
// results stay narrow.
func renderToolsTable(out io.Writer, entries []toolEntry) {
	withDescription := false
	for _, e := range entries {
		if e.Description != "" {
			withDescription = true
			break
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)

	if withDescription {
		t.AppendHeader(table.Row{
			text.FgHiCyan.Sprint("SERVER"),
			text.FgHiCyan.Sprint("TOOL"),
			text.FgHiCyan.Sprint("DESCRIPTION"),
		})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.Server,
				e.Name,
				pkgstrings.TruncateDescription(e.Description, pkgstrings.DefaultDescriptionMaxLen),
			})
		}
	} else {
		t.AppendHeader(table.Row{
			text.FgHiCyan.Sprint("SERVER"),
			text.FgHiCyan.Sprint("TOOL"),
		})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Server, e.Name})
		}
	}

	t.Render()
}
