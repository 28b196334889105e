package toolclient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"toolbench/internal/config"
	"toolbench/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// Pool manages one Client per configured upstream server, keyed by server
// name. Connections are established lazily on first use and reused after
// that; Initialize on an already-connected client is a no-op, so concurrent
// first calls are safe.
type Pool struct {
	mu          sync.RWMutex
	clients     map[string]Client
	configs     map[string]config.ServerConfig
	callTimeout time.Duration
}

// NewPool builds a pool over the configured servers. callTimeout is the
// inner per-call timeout applied by CallTool, independent of any outer
// deadline the caller carries.
func NewPool(servers []config.ServerConfig, callTimeout time.Duration) *Pool {
	configs := make(map[string]config.ServerConfig, len(servers))
	for _, srv := range servers {
		configs[srv.Name] = srv
	}
	return &Pool{
		clients:     make(map[string]Client, len(servers)),
		configs:     configs,
		callTimeout: callTimeout,
	}
}

// Servers returns the configured server names, sorted.
func (p *Pool) Servers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.configs))
	for name := range p.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// get returns the connected client for server, creating and initializing it
// on first use.
func (p *Pool) get(ctx context.Context, server string) (Client, error) {
	p.mu.RLock()
	c, ok := p.clients[server]
	p.mu.RUnlock()
	if ok {
		return c, nil
	}

	p.mu.Lock()
	if c, ok := p.clients[server]; ok {
		p.mu.Unlock()
		return c, nil
	}

	cfg, ok := p.configs[server]
	if !ok {
		p.mu.Unlock()
		return nil, fmt.Errorf("unknown server %q", server)
	}

	switch cfg.Transport {
	case config.TransportSSE:
		c = NewSSEClient(cfg.URL, cfg.Headers)
	default:
		c = NewStreamableHTTPClient(cfg.URL, cfg.Headers)
	}
	p.clients[server] = c
	p.mu.Unlock()

	if err := c.Initialize(ctx); err != nil {
		// Drop the failed client so the next call retries the handshake.
		p.mu.Lock()
		delete(p.clients, server)
		p.mu.Unlock()
		return nil, classifyRPCError(server, err)
	}
	return c, nil
}

// ListTools returns the tool catalog of one upstream server.
func (p *Pool) ListTools(ctx context.Context, server string) ([]mcp.Tool, error) {
	c, err := p.get(ctx, server)
	if err != nil {
		return nil, err
	}

	tools, err := c.ListTools(ctx)
	if err != nil {
		return nil, classifyRPCError(server, err)
	}
	return tools, nil
}

// CallTool invokes a named tool on a named server and returns its text
// output. The inner call timeout applies regardless of the caller's
// deadline. Failures come back as *TransportError, *ProtocolError or
// *ToolError.
func (p *Pool) CallTool(ctx context.Context, server, tool string, args map[string]interface{}) (string, error) {
	c, err := p.get(ctx, server)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	started := time.Now()
	result, err := c.CallTool(callCtx, tool, args)
	if err != nil {
		logging.Debug("ToolClient", "Call %s/%s failed after %s: %v", server, tool, time.Since(started), err)
		return "", classifyRPCError(server, err)
	}

	text := contentText(result)
	if result.IsError {
		return "", &ToolError{Server: server, Tool: tool, Message: text}
	}

	logging.Debug("ToolClient", "Call %s/%s completed in %s", server, tool, time.Since(started))
	return text, nil
}

// Ping checks one upstream server for responsiveness.
func (p *Pool) Ping(ctx context.Context, server string) error {
	c, err := p.get(ctx, server)
	if err != nil {
		return err
	}
	if err := c.Ping(ctx); err != nil {
		return classifyRPCError(server, err)
	}
	return nil
}

// CloseAll shuts down every connected client. Used on shutdown; errors are
// logged, not returned, because there is nothing left to do with them.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, c := range p.clients {
		if err := c.Close(); err != nil {
			logging.Warn("ToolClient", "Error closing client for %s: %v", name, err)
		}
		delete(p.clients, name)
	}
}

// contentText joins the text contents of a tool result.
func contentText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, textContent.Text)
		}
	}
	return strings.Join(parts, "\n")
}
