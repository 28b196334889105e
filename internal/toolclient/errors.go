package toolclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// TransportError indicates the upstream server could not be reached or the
// HTTP exchange failed before a JSON-RPC response was decoded. This covers
// connection failures, non-2xx responses and the inner call timeout.
type TransportError struct {
	Server string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for server %q: %v", e.Server, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates the server answered but the JSON-RPC exchange
// failed: a malformed envelope or an explicit JSON-RPC error object.
// Code is zero when the failure had no error object to take a code from.
type ProtocolError struct {
	Server  string
	Code    int
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("protocol error from server %q (code %d): %s", e.Server, e.Code, e.Message)
	}
	return fmt.Sprintf("protocol error from server %q: %s", e.Server, e.Message)
}

// ToolError indicates the tool executed and reported a domain failure.
type ToolError struct {
	Server  string
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s/%s failed: %s", e.Server, e.Tool, e.Message)
}

// classifyRPCError sorts an error returned by the mcp-go client into the
// transport/protocol taxonomy. mcp-go surfaces both kinds as a plain error,
// so the split happens here: anything that is recognizably a network-level
// fault (or an HTTP status failure, which mcp-go reports with the status in
// the message) is transport; everything else the server said is protocol.
func classifyRPCError(server string, err error) error {
	if err == nil {
		return nil
	}

	if isTransportFault(err) {
		return &TransportError{Server: server, Err: err}
	}

	return &ProtocolError{Server: server, Message: err.Error()}
}

func isTransportFault(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	// Non-2xx responses come back from mcp-go as formatted messages naming
	// the HTTP status rather than as typed errors.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "status code") ||
		strings.Contains(msg, "http status") ||
		strings.Contains(msg, "connection refused")
}
