package config

// Config is the top-level configuration structure for mcpagent.
type Config struct {
	Auth      AuthConfig      `yaml:"auth"`
	MCP       MCPConfig       `yaml:"mcp"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
	Backend   BackendConfig   `yaml:"backend"`
}

// AuthConfig controls credential acquisition.
type AuthConfig struct {
	// RealmURL enables dynamic client registration and the client-credentials
	// grant against this realm. Empty disables authentication.
	RealmURL string `yaml:"realmURL,omitempty"`
}

// MCPConfig describes the remote tool endpoint.
type MCPConfig struct {
	URL  string `yaml:"url"`            // Streamable HTTP endpoint (default: http://localhost:8000/mcp/)
	Name string `yaml:"name,omitempty"` // Display name used in logs
}

// KeepaliveConfig controls the idle phase after the request.
type KeepaliveConfig struct {
	// Enabled keeps the process alive with a heartbeat once the request is done.
	Enabled bool `yaml:"enabled,omitempty"`
}

// BackendHost selects the chat completion backend.
type BackendHost string

const (
	BackendHostAzure  BackendHost = "azure"
	BackendHostGitHub BackendHost = "github"
	BackendHostOllama BackendHost = "ollama"
	BackendHostOpenAI BackendHost = "openai"
)

// BackendConfig carries the settings of every backend variant. Only the
// block matching Host is used.
type BackendConfig struct {
	Host   BackendHost         `yaml:"host"`
	Azure  AzureBackendConfig  `yaml:"azure,omitempty"`
	GitHub GitHubBackendConfig `yaml:"github,omitempty"`
	Ollama OllamaBackendConfig `yaml:"ollama,omitempty"`
	OpenAI OpenAIBackendConfig `yaml:"openai,omitempty"`
}

// AzureBackendConfig configures an Azure OpenAI deployment.
type AzureBackendConfig struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	Deployment string `yaml:"deployment,omitempty"`
	APIVersion string `yaml:"apiVersion,omitempty"`
	// APIKey overrides Entra ID authentication when set.
	APIKey string `yaml:"-"`
}

// GitHubBackendConfig configures GitHub Models.
type GitHubBackendConfig struct {
	Token string `yaml:"-"`
	Model string `yaml:"model,omitempty"`
}

// OllamaBackendConfig configures a local Ollama server.
type OllamaBackendConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// OpenAIBackendConfig configures the OpenAI API.
type OpenAIBackendConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model,omitempty"`
}
