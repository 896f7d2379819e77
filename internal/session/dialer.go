package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"mcpagent/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// DefaultClientName is reported to the server during the MCP handshake.
	DefaultClientName = "mcpagent"
	// DefaultClientVersion is reported to the server during the MCP handshake.
	DefaultClientVersion = "1.0.0"
)

// Conn is an established MCP connection.
type Conn interface {
	// ListTools returns all tools the server exposes
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	// CallTool executes a tool and returns its result
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
	// Close releases the underlying transport
	Close() error
}

// Dialer establishes connections. A Dialer that returns an error must not
// leave anything open behind it.
type Dialer interface {
	Dial(ctx context.Context, url string, headers map[string]string) (Conn, error)
}

// StreamableHTTPDialer dials MCP servers over the streamable HTTP transport.
type StreamableHTTPDialer struct {
	// HTTPClient replaces the transport's default HTTP client when set.
	HTTPClient    *http.Client
	ClientName    string
	ClientVersion string
}

// NewStreamableHTTPDialer returns a dialer reporting the default client info.
func NewStreamableHTTPDialer() *StreamableHTTPDialer {
	return &StreamableHTTPDialer{
		ClientName:    DefaultClientName,
		ClientVersion: DefaultClientVersion,
	}
}

// Dial creates the transport, starts it and performs the MCP handshake.
// Headers are attached only when non-empty, so an unauthenticated connection
// carries no Authorization header at all.
func (d *StreamableHTTPDialer) Dial(ctx context.Context, url string, headers map[string]string) (Conn, error) {
	logging.Debug("Session", "Creating StreamableHTTP client for URL: %s", url)

	var opts []transport.StreamableHTTPCOption
	if len(headers) > 0 {
		// The transport builds some requests itself (the session DELETE on
		// Close) without its header option, so the headers ride on the client.
		opts = append(opts, transport.WithHTTPBasicClient(d.clientWithHeaders(headers)))
		logging.Debug("Session", "Configured %d custom headers", len(headers))
	} else if d.HTTPClient != nil {
		opts = append(opts, transport.WithHTTPBasicClient(d.HTTPClient))
	}

	mcpClient, err := client.NewStreamableHttpClient(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create StreamableHTTP client: %w", err)
	}

	if err := mcpClient.Start(ctx); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("failed to start StreamableHTTP client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    d.clientName(),
		Version: d.clientVersion(),
	}
	initReq.Params.Capabilities = mcp.ClientCapabilities{}

	initResult, err := mcpClient.Initialize(ctx, initReq)
	if err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	logging.Debug("Session", "StreamableHTTP client initialized. Server: %s, Version: %s",
		initResult.ServerInfo.Name, initResult.ServerInfo.Version)

	return &streamableConn{client: mcpClient}, nil
}

func (d *StreamableHTTPDialer) clientName() string {
	if strings.TrimSpace(d.ClientName) == "" {
		return DefaultClientName
	}
	return d.ClientName
}

func (d *StreamableHTTPDialer) clientVersion() string {
	if strings.TrimSpace(d.ClientVersion) == "" {
		return DefaultClientVersion
	}
	return d.ClientVersion
}

// clientWithHeaders returns a copy of the configured HTTP client whose
// transport sets headers on every request.
func (d *StreamableHTTPDialer) clientWithHeaders(headers map[string]string) *http.Client {
	httpClient := &http.Client{}
	if d.HTTPClient != nil {
		*httpClient = *d.HTTPClient
	}
	httpClient.Transport = &headerTransport{
		headers: copyHeaders(headers),
		next:    httpClient.Transport,
	}
	return httpClient
}

// headerTransport adds fixed headers to each outgoing request.
type headerTransport struct {
	headers map[string]string
	next    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return next.RoundTrip(req)
}

// streamableConn adapts the mcp-go client to Conn.
type streamableConn struct {
	client *client.Client
}

func (c *streamableConn) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return result.Tools, nil
}

func (c *streamableConn) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call tool: %w", err)
	}
	return result, nil
}

func (c *streamableConn) Close() error {
	return c.client.Close()
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}
