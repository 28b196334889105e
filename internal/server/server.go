package server

import (
	"net/http"
	"time"

	"toolbench/internal/catalog"
	"toolbench/internal/config"
	"toolbench/internal/executor"
	"toolbench/pkg/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// httpTimeoutGrace pads the outer HTTP timeout beyond the largest permitted
// execution timeout, leaving room for scratch-file setup and result encoding.
const httpTimeoutGrace = 10 * time.Second

// Server routes the REST surface to the execution engine and the disclosure
// index.
type Server struct {
	cfg    config.ExecutionConfig
	engine *executor.Engine
	index  *catalog.Index
	router *chi.Mux
}

// New constructs a Server with middleware and routes configured. The
// execution config supplies the default timeout injected into requests that
// omit one and bounds the outer HTTP timeout.
func New(cfg config.ExecutionConfig, engine *executor.Engine, index *catalog.Index) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		index:  index,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(time.Duration(cfg.MaxTimeoutMs)*time.Millisecond + httpTimeoutGrace))

	s.router.Post("/execute", s.handleExecute)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/tools", s.handleTools)
	s.router.Get("/tools/search", s.handleSearch)
	s.router.Get("/tools/info/{server}/{tool}", s.handleInfo)

	return s
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// requestLogger replaces chi's default logger so request lines share the
// process-wide slog format and subsystem tagging.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Info("HTTP", "%s %s -> %d (%d bytes in %s)",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
