// Package server exposes the execution engine and the disclosure index over
// a small REST surface.
//
// Routes:
//
//   - POST /execute                    - run code in a sandboxed subprocess
//   - GET  /health                     - liveness plus catalog statistics
//   - GET  /tools                      - servers and tool names
//   - GET  /tools/search               - tiered catalog search
//   - GET  /tools/info/{server}/{tool} - single tool lookup
//
// Request validation failures map to 400, missing tools to 404, and internal
// faults to 500. Execution outcomes, including timeouts and runtime failures,
// are 200 responses with a structured error field so callers can distinguish
// "your code failed" from "the service failed".
//
// The router is chi with RequestID, RealIP, Recoverer and an outer Timeout
// slightly above the largest permitted execution timeout. Request logging
// goes through pkg/logging rather than chi's default logger so the format
// matches the rest of the process.
package server
