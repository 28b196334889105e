package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"toolbench/internal/catalog"
	"toolbench/internal/config"
	"toolbench/pkg/logging"

	"github.com/google/uuid"
)

// Language selects the interpreter for a request.
type Language string

const (
	// LanguageTypeScript runs code with the configured TypeScript command.
	// This is the default and the only language the async-wrap transform
	// applies to.
	LanguageTypeScript Language = "typescript"
	// LanguagePython runs code with the configured Python command.
	LanguagePython Language = "python"
)

// ext returns the scratch file extension for the language.
func (l Language) ext() string {
	if l == LanguagePython {
		return ".py"
	}
	return ".ts"
}

// Request is one code execution. TimeoutMs must lie within the configured
// bounds; callers apply the configured default before calling Execute.
type Request struct {
	Code      string
	Language  Language
	TimeoutMs int
}

// Metrics sizes the captured output so callers can account for cost on
// every outcome, including failures.
type Metrics struct {
	OutputBytes    int `json:"outputBytes"`
	TokensEstimate int `json:"tokensEstimate"`
}

// Result is the outcome of one execution. Error is empty on success; a
// timeout or runtime failure fills it while keeping any partial output.
type Result struct {
	Output          string
	Error           string
	ExecutionTimeMs int64
	Truncated       bool
	Metrics         Metrics
}

// phase tracks where a request is in its lifecycle:
//
//	pending -> writing_source -> running -> {completed | timed_out | failed} -> cleaned_up
//
// Every request ends at cleaned_up no matter which outcome it hit.
type phase string

const (
	phasePending       phase = "pending"
	phaseWritingSource phase = "writing_source"
	phaseRunning       phase = "running"
	phaseCompleted     phase = "completed"
	phaseTimedOut      phase = "timed_out"
	phaseFailed        phase = "failed"
	phaseCleanedUp     phase = "cleaned_up"
)

// Engine executes code in isolated, time-boxed child processes.
type Engine struct {
	cfg        config.ExecutionConfig
	scratchDir string
	workDir    string
}

// New creates an engine. scratchDir receives the per-request source files;
// workDir is the child's working directory, normally the workspace root so
// generated wrappers resolve via relative imports.
func New(cfg config.ExecutionConfig, scratchDir, workDir string) *Engine {
	return &Engine{cfg: cfg, scratchDir: scratchDir, workDir: workDir}
}

// Execute runs one request through the full lifecycle. It returns a
// *ValidationError for requests rejected before any subprocess is spawned
// and a plain error for internal faults (unwritable scratch directory,
// missing interpreter). Execution outcomes — completion, timeout, runtime
// failure — are reported inside the Result, never as an error.
//
// The scratch file is removed on every path, including an error while
// writing it or spawning the interpreter.
func (e *Engine) Execute(ctx context.Context, req Request) (*Result, error) {
	if err := e.validate(&req); err != nil {
		return nil, err
	}

	started := time.Now()
	state := phasePending
	defer func() {
		logging.Debug("Executor", "Request finished in state %s after %s", state, time.Since(started))
	}()

	code := req.Code
	if req.Language == LanguageTypeScript {
		code = WrapTopLevelAwait(code)
	}

	state = phaseWritingSource
	path := e.scratchPath(req.Language)
	if err := os.WriteFile(path, []byte(code), 0600); err != nil {
		state = phaseCleanedUp
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("Executor", "Could not remove scratch file %s: %v", path, err)
		}
		state = phaseCleanedUp
	}()

	argv := e.command(req.Language)
	cmd := exec.Command(argv[0], append(append([]string{}, argv[1:]...), path)...)
	cmd.Dir = e.workDir
	setProcessGroup(cmd)

	capture := newCapturePair(e.cfg.MaxOutputBytes)
	cmd.Stdout = capture.StdoutWriter()
	cmd.Stderr = capture.StderrWriter()

	logging.Debug("Executor", "Running %s (%d bytes of %s, timeout %dms)",
		filepath.Base(path), len(code), req.Language, req.TimeoutMs)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting interpreter %q: %w", argv[0], err)
	}
	state = phaseRunning

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(time.Duration(req.TimeoutMs) * time.Millisecond)
	defer timer.Stop()

	var waitErr error
	var timedOut, canceled bool
	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		e.kill(cmd)
		waitErr = <-done
	case <-ctx.Done():
		canceled = true
		e.kill(cmd)
		waitErr = <-done
	}

	result := &Result{
		Output:          capture.Stdout(),
		ExecutionTimeMs: time.Since(started).Milliseconds(),
		Truncated:       capture.Truncated(),
	}

	switch {
	case timedOut:
		state = phaseTimedOut
		result.Error = fmt.Sprintf("Execution timed out after %dms", req.TimeoutMs)
	case canceled:
		state = phaseFailed
		result.Error = "Execution canceled before completion"
	case waitErr != nil:
		state = phaseFailed
		result.Error = capture.Stderr()
		if strings.TrimSpace(result.Error) == "" {
			result.Error = waitErr.Error()
		}
	default:
		state = phaseCompleted
		if result.Output == "" {
			result.Output = capture.Stderr()
		}
	}

	result.Metrics = Metrics{
		OutputBytes:    len(result.Output),
		TokensEstimate: catalog.EstimateTokens(result.Output),
	}
	return result, nil
}

// kill terminates the child and its process group. SIGKILL cannot be
// trapped, so a single signal suffices; failures are logged because there
// is nothing else to do with them.
func (e *Engine) kill(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := killProcessGroup(cmd.Process.Pid, syscall.SIGKILL); err != nil {
		logging.Warn("Executor", "Could not kill process %d: %v", cmd.Process.Pid, err)
	}
}

// scratchPath builds a collision-free scratch file name from the current
// unix-nano timestamp and a UUID fragment. Concurrent requests share only
// the directory, never a file.
func (e *Engine) scratchPath(lang Language) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("exec-%d-%s%s", time.Now().UnixNano(), token, lang.ext())
	return filepath.Join(e.scratchDir, name)
}

func (e *Engine) command(lang Language) []string {
	if lang == LanguagePython {
		return e.cfg.PythonCommand
	}
	return e.cfg.TypescriptCommand
}
