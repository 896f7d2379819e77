package backend

import (
	"fmt"
	"net/url"
	"strings"

	"mcpagent/internal/config"
	"mcpagent/pkg/logging"
)

// Kind identifies a chat completion backend variant.
type Kind string

const (
	KindAzure  Kind = "azure"
	KindGitHub Kind = "github"
	KindOllama Kind = "ollama"
	KindOpenAI Kind = "openai"
)

// Descriptor is the resolved backend: everything needed to send an
// OpenAI-compatible chat completion request. It is built once at startup.
type Descriptor struct {
	Kind Kind
	// BaseURL is the API root; ChatCompletionsURL derives the request URL from it.
	BaseURL string
	Model   string
	APIKey  string
	// Deployment and APIVersion are only used by KindAzure.
	Deployment string
	APIVersion string
}

// Resolve turns the backend configuration into a Descriptor.
// Unknown hosts fall back to OpenAI.
func Resolve(cfg config.BackendConfig) (Descriptor, error) {
	switch Kind(cfg.Host) {
	case KindAzure:
		if cfg.Azure.Endpoint == "" || cfg.Azure.Deployment == "" {
			return Descriptor{}, fmt.Errorf("azure backend requires %s and %s", config.EnvAzureEndpoint, config.EnvAzureDeployment)
		}
		return Descriptor{
			Kind:       KindAzure,
			BaseURL:    strings.TrimRight(cfg.Azure.Endpoint, "/"),
			Model:      cfg.Azure.Deployment,
			APIKey:     cfg.Azure.APIKey,
			Deployment: cfg.Azure.Deployment,
			APIVersion: cfg.Azure.APIVersion,
		}, nil

	case KindGitHub:
		if cfg.GitHub.Token == "" {
			return Descriptor{}, fmt.Errorf("github backend requires %s", config.EnvGitHubToken)
		}
		return Descriptor{
			Kind:    KindGitHub,
			BaseURL: config.DefaultGitHubBaseURL,
			Model:   orDefault(cfg.GitHub.Model, config.DefaultGitHubModel),
			APIKey:  cfg.GitHub.Token,
		}, nil

	case KindOllama:
		return Descriptor{
			Kind:    KindOllama,
			BaseURL: strings.TrimRight(orDefault(cfg.Ollama.Endpoint, config.DefaultOllamaEndpoint), "/"),
			Model:   orDefault(cfg.Ollama.Model, config.DefaultOllamaModel),
			APIKey:  "none",
		}, nil

	case KindOpenAI:
	default:
		logging.Warn("Backend", "Unknown backend host %q, using openai", cfg.Host)
	}

	return Descriptor{
		Kind:    KindOpenAI,
		BaseURL: config.DefaultOpenAIBaseURL,
		Model:   orDefault(cfg.OpenAI.Model, config.DefaultOpenAIModel),
		APIKey:  cfg.OpenAI.APIKey,
	}, nil
}

// ChatCompletionsURL returns the endpoint chat requests are posted to.
func (d Descriptor) ChatCompletionsURL() string {
	if d.Kind == KindAzure {
		u := fmt.Sprintf("%s/openai/deployments/%s/chat/completions", d.BaseURL, url.PathEscape(d.Deployment))
		if d.APIVersion != "" {
			u += "?api-version=" + url.QueryEscape(d.APIVersion)
		}
		return u
	}
	return strings.TrimRight(d.BaseURL, "/") + "/chat/completions"
}

// UsesEntraID reports whether requests authenticate with an Entra ID token
// instead of a static key.
func (d Descriptor) UsesEntraID() bool {
	return d.Kind == KindAzure && d.APIKey == ""
}

// AuthHeader returns the header name and value carrying a static API key.
// An empty name means no key is configured.
func (d Descriptor) AuthHeader() (string, string) {
	if d.APIKey == "" {
		return "", ""
	}
	if d.Kind == KindAzure {
		return "api-key", d.APIKey
	}
	return "Authorization", "Bearer " + d.APIKey
}

// String describes the backend without exposing credentials.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%s)", d.Kind, d.Model)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
