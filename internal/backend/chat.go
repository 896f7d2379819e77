package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mcpagent/internal/session"
	"mcpagent/pkg/logging"
	pkgstrings "mcpagent/pkg/strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// DefaultMaxToolRounds bounds the model/tool round trips of one request.
	DefaultMaxToolRounds = 8

	// DefaultHTTPTimeout is the timeout for a single chat completion call.
	DefaultHTTPTimeout = 2 * time.Minute
)

// ToolProvider is the capability a request may use.
type ToolProvider interface {
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error)
}

// Error reports a non-2xx answer from the chat backend.
type Error struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("chat completion failed: %d - %s", e.StatusCode, pkgstrings.TruncateDescription(e.Body, pkgstrings.DefaultBodyMaxLen))
}

// ChatRunner runs one user request against a chat backend, letting the model
// call the tools of a ToolProvider until it produces a final answer.
type ChatRunner struct {
	desc         Descriptor
	httpClient   *http.Client
	instructions string
	maxRounds    int
	credential   azcore.TokenCredential
}

// ChatOption configures the ChatRunner.
type ChatOption func(*ChatRunner)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ChatOption {
	return func(r *ChatRunner) {
		r.httpClient = httpClient
	}
}

// WithTokenCredential authenticates Azure requests with Entra ID tokens when
// no API key is configured.
func WithTokenCredential(cred azcore.TokenCredential) ChatOption {
	return func(r *ChatRunner) {
		r.credential = cred
	}
}

// WithInstructions sets the system prompt.
func WithInstructions(instructions string) ChatOption {
	return func(r *ChatRunner) {
		r.instructions = instructions
	}
}

// WithMaxToolRounds overrides DefaultMaxToolRounds.
func WithMaxToolRounds(n int) ChatOption {
	return func(r *ChatRunner) {
		if n > 0 {
			r.maxRounds = n
		}
	}
}

// NewChatRunner creates a runner for the given backend.
func NewChatRunner(desc Descriptor, opts ...ChatOption) *ChatRunner {
	r := &ChatRunner{
		desc:       desc,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		maxRounds:  DefaultMaxToolRounds,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends prompt to the model with the provider's tools attached and
// returns the final assistant message.
func (r *ChatRunner) Run(ctx context.Context, prompt string, tools ToolProvider) (string, error) {
	var chatTools []chatTool
	if tools != nil {
		mcpTools, err := tools.ListTools(ctx)
		if err != nil {
			return "", err
		}
		chatTools, err = toChatTools(mcpTools)
		if err != nil {
			return "", err
		}
		logging.Debug("Backend", "Attached %d tools to the request", len(chatTools))
	}

	var messages []chatMessage
	if r.instructions != "" {
		messages = append(messages, chatMessage{Role: "system", Content: r.instructions})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	for round := 0; round < r.maxRounds; round++ {
		reply, err := r.complete(ctx, chatRequest{Model: r.desc.Model, Messages: messages, Tools: chatTools})
		if err != nil {
			return "", err
		}

		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}
		if tools == nil {
			return "", errors.New("model requested tools but none are attached")
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, chatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    r.invoke(ctx, tools, call),
			})
		}
	}

	return "", fmt.Errorf("no final answer after %d tool rounds", r.maxRounds)
}

// invoke runs a tool call and renders its outcome for the model. Tool
// failures are reported back to the model rather than aborting the request.
func (r *ChatRunner) invoke(ctx context.Context, tools ToolProvider, call toolCall) string {
	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Sprintf("error: invalid arguments for %s: %v", call.Function.Name, err)
		}
	}

	logging.Info("Backend", "Calling tool %s", call.Function.Name)
	result, err := tools.CallTool(ctx, call.Function.Name, args)
	if err != nil {
		logging.Warn("Backend", "Tool %s failed: %v", call.Function.Name, err)
		return fmt.Sprintf("error: %v", err)
	}

	text := session.ResultText(result)
	if result.IsError {
		return "error: " + text
	}
	return text
}

func (r *ChatRunner) complete(ctx context.Context, request chatRequest) (chatMessage, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return chatMessage{}, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.desc.ChatCompletionsURL(), bytes.NewReader(payload))
	if err != nil {
		return chatMessage{}, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := r.authorize(ctx, req); err != nil {
		return chatMessage{}, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return chatMessage{}, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatMessage{}, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return chatMessage{}, &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return chatMessage{}, fmt.Errorf("failed to parse chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return chatMessage{}, errors.New("chat response has no choices")
	}

	return parsed.Choices[0].Message, nil
}

// authorize sets the backend credential. An explicit API key wins; Azure
// without a key falls back to the Entra ID credential.
func (r *ChatRunner) authorize(ctx context.Context, req *http.Request) error {
	if name, value := r.desc.AuthHeader(); name != "" {
		req.Header.Set(name, value)
		return nil
	}
	if r.desc.Kind != KindAzure {
		return nil
	}

	bearer, err := azureBearer(ctx, r.credential)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", bearer)
	return nil
}

func toChatTools(tools []mcp.Tool) ([]chatTool, error) {
	out := make([]chatTool, 0, len(tools))
	for _, tool := range tools {
		params := tool.RawInputSchema
		if len(params) == 0 {
			encoded, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, fmt.Errorf("failed to encode schema of tool %s: %w", tool.Name, err)
			}
			params = encoded
		}
		out = append(out, chatTool{
			Type: "function",
			Function: chatFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}
	return out, nil
}
