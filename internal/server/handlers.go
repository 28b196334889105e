package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"toolbench/internal/catalog"
	"toolbench/internal/executor"
	"toolbench/pkg/logging"

	"github.com/go-chi/chi/v5"
)

// executeRequest is the POST /execute body. Timeout is a pointer so an
// omitted field falls back to the configured default while an explicit zero
// is rejected as out of range.
type executeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Timeout  *int   `json:"timeout,omitempty"`
}

// executeResponse mirrors the engine result on the wire. Error is present
// only on failures; Output may carry partial output next to it.
type executeResponse struct {
	Output        string           `json:"output"`
	Error         string           `json:"error,omitempty"`
	ExecutionTime int64            `json:"executionTime"`
	Truncated     bool             `json:"truncated,omitempty"`
	Metrics       executor.Metrics `json:"metrics"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	timeoutMs := s.cfg.DefaultTimeoutMs
	if req.Timeout != nil {
		timeoutMs = *req.Timeout
	}

	result, err := s.engine.Execute(r.Context(), executor.Request{
		Code:      req.Code,
		Language:  executor.Language(req.Language),
		TimeoutMs: timeoutMs,
	})
	if err != nil {
		var verr *executor.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		logging.Error("HTTP", err, "Execution failed before producing a result")
		respondError(w, http.StatusInternalServerError, "execution failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, executeResponse{
		Output:        result.Output,
		Error:         result.Error,
		ExecutionTime: result.ExecutionTimeMs,
		Truncated:     result.Truncated,
		Metrics:       result.Metrics,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.index.Stats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog scan failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"servers":       len(stats.Servers),
		"totalTools":    stats.TotalTools,
		"toolsByServer": stats.ToolsByServer,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	views, _, err := s.index.Search("", "", catalog.DetailName)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog scan failed: "+err.Error())
		return
	}

	tools := make(map[string][]string)
	for _, v := range views {
		tools[v.Server] = append(tools[v.Server], v.Name)
	}
	servers := make([]string, 0, len(tools))
	for name := range tools {
		servers = append(servers, name)
	}
	sort.Strings(servers)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"servers":    servers,
		"totalTools": len(views),
		"tools":      tools,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	level, err := catalog.ParseDetailLevel(r.URL.Query().Get("detail"), catalog.DetailName)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, savings, err := s.index.Search(
		r.URL.Query().Get("query"), r.URL.Query().Get("server"), level)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "catalog scan failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":      results,
		"count":        len(results),
		"tokenSavings": savings,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	level, err := catalog.ParseDetailLevel(r.URL.Query().Get("detail"), catalog.DetailDescription)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, tokens, err := s.index.Info(chi.URLParam(r, "server"), chi.URLParam(r, "tool"), level)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tool":          view,
		"tokenEstimate": tokens,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("HTTP", err, "Could not encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
