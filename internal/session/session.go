package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"mcpagent/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// Session is a scoped MCP connection bound to one endpoint.
// It is meant for one logical task; the mutex only protects its own state.
type Session struct {
	url    string
	mu     sync.Mutex
	conn   Conn
	closed bool
}

// Open dials url with the optional headers. A nil or empty headers map
// opens an unauthenticated connection. Failures are returned as *ConnectionError.
func Open(ctx context.Context, dialer Dialer, url string, headers map[string]string) (*Session, error) {
	if dialer == nil {
		dialer = NewStreamableHTTPDialer()
	}

	conn, err := dialer.Dial(ctx, url, headers)
	if err != nil {
		return nil, &ConnectionError{URL: url, Err: err}
	}

	return &Session{url: url, conn: conn}, nil
}

// URL returns the endpoint the session is bound to.
func (s *Session) URL() string {
	return s.url
}

// ListTools returns all tools exposed by the remote endpoint.
func (s *Session) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	conn, err := s.active()
	if err != nil {
		return nil, err
	}
	return conn.ListTools(ctx)
}

// CallTool invokes a remote tool.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	conn, err := s.active()
	if err != nil {
		return nil, err
	}
	return conn.CallTool(ctx, name, args)
}

// Close releases the connection. Only the first call reaches the transport.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	logging.Debug("Session", "Closing connection to %s", s.url)
	return s.conn.Close()
}

func (s *Session) active() (Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session to %s is closed", s.url)
	}
	return s.conn, nil
}

// WithConnection opens a session, runs fn with it and closes it again.
// The session is closed on every exit path, including a panic in fn.
// Errors from fn are reported as *RequestError; close errors are only logged.
func WithConnection(ctx context.Context, dialer Dialer, url string, headers map[string]string, fn func(context.Context, *Session) error) error {
	s, err := Open(ctx, dialer, url, headers)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logging.Warn("Session", "Failed to close connection to %s: %v", url, cerr)
		}
	}()

	if err := fn(ctx, s); err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			return err
		}
		return &RequestError{Err: err}
	}
	return nil
}

// ResultText concatenates the text content of a tool result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}

	var parts []string
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
