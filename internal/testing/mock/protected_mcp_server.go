package mock

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolConfig defines a mock tool with a fixed response.
type ToolConfig struct {
	// Name is the unique identifier for the tool
	Name string
	// Description describes what the tool does
	Description string
	// Response is returned as text content
	Response string
	// Error, when set, is returned as a tool error result instead of Response
	Error string
}

// ToolCall records one tool invocation received by the server.
type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

// ProtectedMCPServerConfig configures a mock streamable HTTP MCP server.
type ProtectedMCPServerConfig struct {
	// Name is the name of this MCP server
	Name string

	// Realm validates bearer tokens. When nil the server is unprotected.
	Realm *Realm

	// Tools are the tools to expose
	Tools []ToolConfig
}

// ProtectedMCPServer is a mock MCP server that optionally requires a bearer
// token issued by a Realm.
type ProtectedMCPServer struct {
	config ProtectedMCPServerConfig
	server *httptest.Server

	mu          sync.Mutex
	authHeaders []string
	calls       []ToolCall
}

// NewProtectedMCPServer starts the server on a random local port. Call Close when done.
func NewProtectedMCPServer(config ProtectedMCPServerConfig) *ProtectedMCPServer {
	if config.Name == "" {
		config.Name = "mock"
	}

	s := &ProtectedMCPServer{config: config}

	mcpServer := server.NewMCPServer(
		fmt.Sprintf("protected-%s", config.Name),
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	for _, tool := range config.Tools {
		mcpServer.AddTool(mcp.NewTool(tool.Name, mcp.WithDescription(tool.Description)), s.toolHandler(tool))
	}

	s.server = httptest.NewServer(&oauthProtectionMiddleware{
		handler: server.NewStreamableHTTPServer(mcpServer),
		owner:   s,
	})

	return s
}

// Endpoint returns the MCP endpoint URL.
func (s *ProtectedMCPServer) Endpoint() string {
	return s.server.URL + "/mcp"
}

// Close shuts the server down.
func (s *ProtectedMCPServer) Close() {
	s.server.Close()
}

// AuthorizationHeaders returns the Authorization header of every request
// received, including empty values for unauthenticated requests.
func (s *ProtectedMCPServer) AuthorizationHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders...)
}

// Calls returns the tool calls received so far.
func (s *ProtectedMCPServer) Calls() []ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ToolCall(nil), s.calls...)
}

func (s *ProtectedMCPServer) toolHandler(tool ToolConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		s.calls = append(s.calls, ToolCall{Name: tool.Name, Arguments: req.GetArguments()})
		s.mu.Unlock()

		if tool.Error != "" {
			return mcp.NewToolResultError(tool.Error), nil
		}
		return mcp.NewToolResultText(tool.Response), nil
	}
}

// oauthProtectionMiddleware validates bearer tokens before passing to the MCP handler
type oauthProtectionMiddleware struct {
	handler http.Handler
	owner   *ProtectedMCPServer
}

func (m *oauthProtectionMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")

	m.owner.mu.Lock()
	m.owner.authHeaders = append(m.owner.authHeaders, auth)
	m.owner.mu.Unlock()

	realm := m.owner.config.Realm
	if realm == nil {
		m.handler.ServeHTTP(w, r)
		return
	}

	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || !realm.ValidateToken(token) {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer realm="%s"`, realm.URL()))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	m.handler.ServeHTTP(w, r)
}
