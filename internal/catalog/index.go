package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"toolbench/pkg/logging"

	"golang.org/x/sync/singleflight"
)

// ErrNotFound reports a lookup for a tool whose wrapper file does not exist.
var ErrNotFound = errors.New("tool not found")

// Index answers disclosure queries over the wrapper tree. The scanned
// snapshot is cached until Invalidate marks it stale; rebuilds are
// deduplicated so a burst of queries after regeneration triggers one scan.
type Index struct {
	dir string

	mu       sync.RWMutex
	snapshot []ToolDescriptor
	fresh    bool

	group singleflight.Group
}

// NewIndex creates an index over the wrapper tree rooted at dir.
func NewIndex(dir string) *Index {
	return &Index{dir: dir}
}

// Dir returns the wrapper tree root the index scans.
func (ix *Index) Dir() string {
	return ix.dir
}

// Invalidate marks the snapshot stale. The next query rescans.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.fresh = false
	ix.mu.Unlock()
	logging.Debug("Catalog", "Wrapper tree changed, snapshot invalidated")
}

// Refresh forces a rescan now. Used at startup so the first request does not
// pay the scan cost.
func (ix *Index) Refresh() error {
	ix.Invalidate()
	_, err := ix.descriptors()
	return err
}

// descriptors returns the current snapshot, rescanning if stale. Concurrent
// callers share one scan.
func (ix *Index) descriptors() ([]ToolDescriptor, error) {
	ix.mu.RLock()
	if ix.fresh {
		snapshot := ix.snapshot
		ix.mu.RUnlock()
		return snapshot, nil
	}
	ix.mu.RUnlock()

	result, err, _ := ix.group.Do("scan", func() (interface{}, error) {
		// Double-check after winning the flight.
		ix.mu.RLock()
		if ix.fresh {
			snapshot := ix.snapshot
			ix.mu.RUnlock()
			return snapshot, nil
		}
		ix.mu.RUnlock()

		descriptors, err := Scan(ix.dir)
		if err != nil {
			return nil, err
		}

		ix.mu.Lock()
		ix.snapshot = descriptors
		ix.fresh = true
		ix.mu.Unlock()

		logging.Debug("Catalog", "Scanned wrapper tree at %s: %d tools", ix.dir, len(descriptors))
		return descriptors, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]ToolDescriptor), nil
}

// Search returns every tool whose name or full generated source contains
// query, case-insensitively. An empty query matches everything; a non-empty
// server restricts the candidates. Results are rendered at the requested
// tier, and the savings report sizes the same result set at all three tiers.
func (ix *Index) Search(query, server string, level DetailLevel) ([]ToolView, TokenSavings, error) {
	descriptors, err := ix.descriptors()
	if err != nil {
		return nil, TokenSavings{}, err
	}

	needle := strings.ToLower(query)
	var matched []ToolDescriptor
	for _, d := range descriptors {
		if server != "" && d.Server != server {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.Source), needle) {
			continue
		}
		matched = append(matched, d)
	}

	views := make([]ToolView, 0, len(matched))
	for _, d := range matched {
		views = append(views, d.View(level))
	}
	return views, ComputeSavings(matched, level), nil
}

// Info looks up a single tool straight from its wrapper file, bypassing the
// snapshot, and returns the rendered view plus its token estimate. Returns
// ErrNotFound when the wrapper file does not exist.
func (ix *Index) Info(server, tool string, level DetailLevel) (ToolView, int, error) {
	if !safeName(server) || !safeName(tool) {
		return ToolView{}, 0, fmt.Errorf("%s/%s: %w", server, tool, ErrNotFound)
	}

	path := filepath.Join(ix.dir, server, tool+wrapperExt)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ToolView{}, 0, fmt.Errorf("%s/%s: %w", server, tool, ErrNotFound)
		}
		return ToolView{}, 0, err
	}

	descriptor := parseWrapper(server, tool+wrapperExt, string(content))
	view := descriptor.View(level)
	return view, ViewTokens(view), nil
}

// Stats summarizes the catalog for health and listing endpoints.
type Stats struct {
	Servers       []string
	TotalTools    int
	ToolsByServer map[string]int
}

// Stats aggregates the current snapshot per server.
func (ix *Index) Stats() (Stats, error) {
	descriptors, err := ix.descriptors()
	if err != nil {
		return Stats{}, err
	}

	byServer := make(map[string]int)
	for _, d := range descriptors {
		byServer[d.Server]++
	}

	servers := make([]string, 0, len(byServer))
	for server := range byServer {
		servers = append(servers, server)
	}
	sort.Strings(servers)

	return Stats{
		Servers:       servers,
		TotalTools:    len(descriptors),
		ToolsByServer: byServer,
	}, nil
}

// safeName rejects path-like identifiers so lookups stay inside the wrapper
// tree.
func safeName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
