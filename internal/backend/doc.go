// Package backend resolves the chat completion backend and runs requests
// against it.
//
// The backend is chosen once from configuration and captured in a
// Descriptor; nothing downstream branches on the host again. All supported
// hosts (Azure OpenAI, GitHub Models, Ollama, OpenAI) speak the
// OpenAI-compatible chat completions protocol, so ChatRunner drives them all:
// it attaches the MCP tools of a session as function tools and executes the
// tool calls the model asks for until it produces a final answer.
package backend
