package config

const (
	DefaultMCPServerURL   = "http://localhost:8000/mcp/"
	DefaultMCPServerName  = "Expenses MCP Server"
	DefaultBackendHost    = BackendHostGitHub
	DefaultGitHubBaseURL  = "https://models.github.ai/inference"
	DefaultGitHubModel    = "openai/gpt-4o"
	DefaultOllamaEndpoint = "http://localhost:11434/v1"
	DefaultOllamaModel    = "llama3.1:latest"
	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultOpenAIModel    = "gpt-4o"
)

// GetDefaultConfig returns the configuration used when nothing is set.
// Authentication and keepalive are off by default.
func GetDefaultConfig() Config {
	return Config{
		MCP: MCPConfig{
			URL:  DefaultMCPServerURL,
			Name: DefaultMCPServerName,
		},
		Backend: BackendConfig{
			Host: DefaultBackendHost,
			GitHub: GitHubBackendConfig{
				Model: DefaultGitHubModel,
			},
			Ollama: OllamaBackendConfig{
				Endpoint: DefaultOllamaEndpoint,
				Model:    DefaultOllamaModel,
			},
			OpenAI: OpenAIBackendConfig{
				Model: DefaultOpenAIModel,
			},
		},
	}
}
