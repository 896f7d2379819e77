package backend

import (
	"testing"

	"mcpagent/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.BackendConfig
		expected Descriptor
		wantErr  bool
	}{
		{
			name: "github",
			cfg:  config.BackendConfig{Host: config.BackendHostGitHub, GitHub: config.GitHubBackendConfig{Token: "ghp"}},
			expected: Descriptor{
				Kind:    KindGitHub,
				BaseURL: "https://models.github.ai/inference",
				Model:   "openai/gpt-4o",
				APIKey:  "ghp",
			},
		},
		{
			name:    "github without token",
			cfg:     config.BackendConfig{Host: config.BackendHostGitHub},
			wantErr: true,
		},
		{
			name: "azure",
			cfg: config.BackendConfig{Host: config.BackendHostAzure, Azure: config.AzureBackendConfig{
				Endpoint:   "https://example.openai.azure.com/",
				Deployment: "gpt-4o",
				APIVersion: "2024-10-21",
				APIKey:     "k",
			}},
			expected: Descriptor{
				Kind:       KindAzure,
				BaseURL:    "https://example.openai.azure.com",
				Model:      "gpt-4o",
				APIKey:     "k",
				Deployment: "gpt-4o",
				APIVersion: "2024-10-21",
			},
		},
		{
			name:    "azure without endpoint",
			cfg:     config.BackendConfig{Host: config.BackendHostAzure, Azure: config.AzureBackendConfig{Deployment: "d"}},
			wantErr: true,
		},
		{
			name: "ollama defaults",
			cfg:  config.BackendConfig{Host: config.BackendHostOllama},
			expected: Descriptor{
				Kind:    KindOllama,
				BaseURL: "http://localhost:11434/v1",
				Model:   "llama3.1:latest",
				APIKey:  "none",
			},
		},
		{
			name: "openai",
			cfg:  config.BackendConfig{Host: config.BackendHostOpenAI, OpenAI: config.OpenAIBackendConfig{APIKey: "sk", Model: "gpt-4.1"}},
			expected: Descriptor{
				Kind:    KindOpenAI,
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4.1",
				APIKey:  "sk",
			},
		},
		{
			name: "unknown host falls back to openai",
			cfg:  config.BackendConfig{Host: "anthropic"},
			expected: Descriptor{
				Kind:    KindOpenAI,
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDescriptor_ChatCompletionsURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/v1/chat/completions",
		Descriptor{Kind: KindOllama, BaseURL: "http://localhost:11434/v1/"}.ChatCompletionsURL())
	assert.Equal(t, "https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-10-21",
		Descriptor{Kind: KindAzure, BaseURL: "https://example.openai.azure.com", Deployment: "gpt-4o", APIVersion: "2024-10-21"}.ChatCompletionsURL())
	assert.Equal(t, "https://example.openai.azure.com/openai/deployments/gpt-4o/chat/completions",
		Descriptor{Kind: KindAzure, BaseURL: "https://example.openai.azure.com", Deployment: "gpt-4o"}.ChatCompletionsURL())
}

func TestDescriptor_AuthHeader(t *testing.T) {
	name, value := Descriptor{Kind: KindAzure, APIKey: "k"}.AuthHeader()
	assert.Equal(t, "api-key", name)
	assert.Equal(t, "k", value)

	name, value = Descriptor{Kind: KindGitHub, APIKey: "ghp"}.AuthHeader()
	assert.Equal(t, "Authorization", name)
	assert.Equal(t, "Bearer ghp", value)

	name, _ = Descriptor{Kind: KindOpenAI}.AuthHeader()
	assert.Empty(t, name)
}

func TestDescriptor_StringHidesKey(t *testing.T) {
	d := Descriptor{Kind: KindOpenAI, Model: "gpt-4o", APIKey: "sk-secret"}
	assert.Equal(t, "openai (gpt-4o)", d.String())
	assert.NotContains(t, d.String(), "sk-secret")
}
