package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"toolbench/internal/catalog"
	"toolbench/internal/config"
	"toolbench/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options control one generation run.
type Options struct {
	// Strict aborts the run on the first server failure instead of skipping.
	Strict bool

	// Servers restricts generation to the named servers. Empty means all
	// configured servers.
	Servers []string
}

// Result summarizes one generation run.
type Result struct {
	GeneratedServers int
	GeneratedTools   int
	ToolsByServer    map[string]int
	Skipped          []string
}

// Generator writes the wrapper tree for the configured upstream servers.
type Generator struct {
	lister      ToolLister
	servers     []config.ServerConfig
	dir         string
	callTimeout time.Duration
}

// New creates a generator writing under dir, typically <workspace>/servers.
func New(lister ToolLister, servers []config.ServerConfig, dir string, callTimeout time.Duration) *Generator {
	return &Generator{
		lister:      lister,
		servers:     servers,
		dir:         dir,
		callTimeout: callTimeout,
	}
}

// Generate fetches every catalog and rebuilds the wrapper tree. Each
// server's files land atomically; the shared runtime and discovery files are
// written last, after every fetched server committed.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	catalogs, skipped, err := g.fetch(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating wrapper root: %w", err)
	}

	result := &Result{Skipped: skipped, ToolsByServer: make(map[string]int)}
	for _, cat := range catalogs {
		if err := g.deployServer(cat); err != nil {
			return nil, fmt.Errorf("deploying wrappers for %s: %w", cat.Name, err)
		}
		result.GeneratedServers++
		result.GeneratedTools += len(cat.Tools)
		result.ToolsByServer[cat.Name] = len(cat.Tools)
		logging.Info("Generator", "Generated %d wrappers for %s", len(cat.Tools), cat.Name)
	}

	if result.GeneratedServers == 0 {
		logging.Warn("Generator", "No server produced wrappers, shared files left untouched")
		return result, nil
	}

	if err := g.writeSharedFiles(); err != nil {
		return nil, err
	}
	return result, nil
}

// fetch lists every requested server's tools concurrently.
func (g *Generator) fetch(ctx context.Context, opts Options) ([]ServerCatalog, []string, error) {
	names := g.lister.Servers()
	if len(opts.Servers) > 0 {
		filtered, err := filterNames(names, opts.Servers)
		if err != nil {
			return nil, nil, err
		}
		names = filtered
	}

	catalogs := make([]ServerCatalog, len(names))
	skipped := make([]string, len(names))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		eg.Go(func() error {
			tools, err := g.lister.ListTools(egCtx, name)
			if err != nil {
				if opts.Strict {
					return fmt.Errorf("listing tools on %s: %w", name, err)
				}
				logging.Warn("Generator", "Skipping unreachable server %s: %v", name, err)
				skipped[i] = name
				return nil
			}

			cat := toCatalog(name, tools)
			if len(cat.Tools) == 0 {
				logging.Warn("Generator", "Server %s exposes no tools, skipping", name)
				skipped[i] = name
				return nil
			}

			catalogs[i] = cat
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var kept []ServerCatalog
	var skippedNames []string
	for i := range catalogs {
		if skipped[i] != "" {
			skippedNames = append(skippedNames, skipped[i])
			continue
		}
		kept = append(kept, catalogs[i])
	}
	return kept, skippedNames, nil
}

// deployServer writes one server's rendered files into a staging directory
// and swaps it into place. The live tree is only replaced once every file
// rendered and wrote cleanly.
func (g *Generator) deployServer(cat ServerCatalog) error {
	files, err := RenderServer(cat)
	if err != nil {
		return err
	}

	staging := filepath.Join(g.dir, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(staging, name), []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	live := filepath.Join(g.dir, cat.Name)
	if err := os.RemoveAll(live); err != nil {
		return fmt.Errorf("clearing %s: %w", live, err)
	}
	if err := os.Rename(staging, live); err != nil {
		return fmt.Errorf("activating %s: %w", live, err)
	}
	return nil
}

// writeSharedFiles renders client.ts and discovery.ts at the tree root.
// Discovery reflects the live tree, so regenerating a subset of servers
// keeps the other servers' entries.
func (g *Generator) writeSharedFiles() error {
	runtime, err := RenderRuntime(g.servers, g.callTimeout)
	if err != nil {
		return fmt.Errorf("rendering runtime: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.dir, "client"+wrapperExt), []byte(runtime), 0644); err != nil {
		return fmt.Errorf("writing shared runtime: %w", err)
	}

	descriptors, err := catalog.Scan(g.dir)
	if err != nil {
		return fmt.Errorf("scanning wrapper tree: %w", err)
	}
	discovery, err := RenderDiscovery(descriptors)
	if err != nil {
		return fmt.Errorf("rendering discovery: %w", err)
	}
	if err := os.WriteFile(filepath.Join(g.dir, "discovery"+wrapperExt), []byte(discovery), 0644); err != nil {
		return fmt.Errorf("writing discovery catalog: %w", err)
	}
	return nil
}

// filterNames resolves a requested server subset against the configured
// set, preserving determinism by sorting.
func filterNames(configured, requested []string) ([]string, error) {
	known := make(map[string]bool, len(configured))
	for _, name := range configured {
		known[name] = true
	}

	out := make([]string, 0, len(requested))
	for _, name := range requested {
		if !known[name] {
			return nil, fmt.Errorf("unknown server %q", name)
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
