package app

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"toolbench/internal/catalog"
	"toolbench/internal/executor"
	"toolbench/internal/server"
	"toolbench/pkg/logging"
)

// Services holds the initialized core services of the application.
type Services struct {
	Engine  *executor.Engine
	Index   *catalog.Index
	Watcher *catalog.Watcher
	HTTP    *http.Server
	Addr    string
}

// InitializeServices creates the workspace directories and wires together the
// execution engine, the wrapper catalog with its filesystem watcher, and the
// HTTP server. The caller is responsible for starting the watcher and the
// listener (see runServeMode).
func InitializeServices(cfg *Config) (*Services, error) {
	tb := cfg.Toolbench

	if err := os.MkdirAll(tb.Workspace.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace dir %s: %w", tb.Workspace.Dir, err)
	}
	if err := os.MkdirAll(tb.EffectiveScratchDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating scratch dir %s: %w", tb.EffectiveScratchDir(), err)
	}
	if err := os.MkdirAll(tb.WrapperDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating wrapper dir %s: %w", tb.WrapperDir(), err)
	}

	engine := executor.New(tb.Execution, tb.EffectiveScratchDir(), tb.Workspace.Dir)

	index := catalog.NewIndex(tb.WrapperDir())
	if err := index.Refresh(); err != nil {
		return nil, fmt.Errorf("priming catalog index: %w", err)
	}
	if stats, err := index.Stats(); err == nil {
		logging.Info("Services", "Indexed %d tools across %d servers", stats.TotalTools, len(stats.Servers))
	}

	watcher := catalog.NewWatcher(catalog.WatcherConfig{
		Dir:      tb.WrapperDir(),
		OnChange: index.Invalidate,
	})

	srv := server.New(tb.Execution, engine, index)
	addr := fmt.Sprintf("%s:%d", tb.HTTP.Host, tb.HTTP.Port)

	return &Services{
		Engine:  engine,
		Index:   index,
		Watcher: watcher,
		HTTP: &http.Server{
			Addr:              addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		Addr: addr,
	}, nil
}
