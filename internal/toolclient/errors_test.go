package toolclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportErrorFormatting(t *testing.T) {
	err := &TransportError{Server: "github", Err: errors.New("connection refused")}
	assert.Contains(t, err.Error(), "github")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := syscall.ECONNREFUSED
	err := &TransportError{Server: "github", Err: fmt.Errorf("dialing: %w", cause)}
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED))
}

func TestProtocolErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *ProtocolError
		want []string
	}{
		{
			name: "with code",
			err:  &ProtocolError{Server: "github", Code: -32601, Message: "method not found"},
			want: []string{"github", "-32601", "method not found"},
		},
		{
			name: "without code",
			err:  &ProtocolError{Server: "github", Message: "malformed response"},
			want: []string{"github", "malformed response"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, fragment := range tt.want {
				assert.Contains(t, tt.err.Error(), fragment)
			}
		})
	}
}

func TestToolErrorFormatting(t *testing.T) {
	err := &ToolError{Server: "github", Tool: "create_issue", Message: "repository not found"}
	assert.Contains(t, err.Error(), "github/create_issue")
	assert.Contains(t, err.Error(), "repository not found")
}

// TestClassifyRPCError verifies that errors coming out of the RPC layer are
// sorted into the transport/protocol taxonomy based on their cause chain.
func TestClassifyRPCError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransport bool
	}{
		{
			name:          "deadline exceeded",
			err:           context.DeadlineExceeded,
			wantTransport: true,
		},
		{
			name:          "wrapped deadline",
			err:           fmt.Errorf("request failed: %w", context.DeadlineExceeded),
			wantTransport: true,
		},
		{
			name:          "canceled context",
			err:           context.Canceled,
			wantTransport: true,
		},
		{
			name:          "connection refused errno",
			err:           fmt.Errorf("dialing upstream: %w", syscall.ECONNREFUSED),
			wantTransport: true,
		},
		{
			name:          "url error",
			err:           &url.Error{Op: "Post", URL: "http://localhost:1/mcp", Err: errors.New("no route to host")},
			wantTransport: true,
		},
		{
			name:          "http status message",
			err:           errors.New("request failed with status code 502"),
			wantTransport: true,
		},
		{
			name:          "json-rpc error object",
			err:           errors.New("method not found"),
			wantTransport: false,
		},
		{
			name:          "malformed envelope",
			err:           errors.New("invalid character '<' looking for beginning of value"),
			wantTransport: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyRPCError("upstream", tt.err)
			require.Error(t, classified)

			var transportErr *TransportError
			var protocolErr *ProtocolError
			if tt.wantTransport {
				require.True(t, errors.As(classified, &transportErr), "expected TransportError, got %T: %v", classified, classified)
				assert.Equal(t, "upstream", transportErr.Server)
			} else {
				require.True(t, errors.As(classified, &protocolErr), "expected ProtocolError, got %T: %v", classified, classified)
				assert.Equal(t, "upstream", protocolErr.Server)
			}
		})
	}
}

func TestClassifyRPCErrorNil(t *testing.T) {
	assert.NoError(t, classifyRPCError("upstream", nil))
}
