package executor

import (
	"bytes"
	"io"
	"sync"
)

// capturePair buffers stdout and stderr separately while enforcing one
// combined byte budget across both streams. Writes never fail: once the
// budget is spent, excess bytes are dropped and the pair is marked
// truncated. Oversized output is a flag on the result, not an error.
type capturePair struct {
	mu        sync.Mutex
	remaining int
	truncated bool
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

func newCapturePair(limit int) *capturePair {
	return &capturePair{remaining: limit}
}

// StdoutWriter returns the writer to attach to the child's stdout.
func (c *capturePair) StdoutWriter() io.Writer {
	return &budgetWriter{pair: c, buf: &c.stdout}
}

// StderrWriter returns the writer to attach to the child's stderr.
func (c *capturePair) StderrWriter() io.Writer {
	return &budgetWriter{pair: c, buf: &c.stderr}
}

// Stdout returns the captured stdout. Call only after the child exited.
func (c *capturePair) Stdout() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stdout.String()
}

// Stderr returns the captured stderr. Call only after the child exited.
func (c *capturePair) Stderr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stderr.String()
}

// Truncated reports whether any bytes were dropped.
func (c *capturePair) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}

// budgetWriter writes into one stream's buffer while charging the shared
// budget. The two writers run on separate pipe-copy goroutines, so every
// write takes the pair's lock.
type budgetWriter struct {
	pair *capturePair
	buf  *bytes.Buffer
}

func (w *budgetWriter) Write(p []byte) (int, error) {
	w.pair.mu.Lock()
	defer w.pair.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}
	if w.pair.remaining <= 0 {
		w.pair.truncated = true
		return len(p), nil
	}

	n := len(p)
	if n > w.pair.remaining {
		n = w.pair.remaining
		w.pair.truncated = true
	}
	w.buf.Write(p[:n])
	w.pair.remaining -= n
	return len(p), nil
}
