package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mcpagent/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvRealmURL            = "KEYCLOAK_REALM_URL"
	EnvMCPServerURL        = "MCP_SERVER_URL"
	EnvRunningInProduction = "RUNNING_IN_PRODUCTION"
	EnvAPIHost             = "API_HOST"

	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureDeployment = "AZURE_OPENAI_CHAT_DEPLOYMENT"
	EnvAzureVersion    = "AZURE_OPENAI_VERSION"
	EnvAzureAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvGitHubToken     = "GITHUB_TOKEN"
	EnvGitHubModel     = "GITHUB_MODEL"
	EnvOllamaEndpoint  = "OLLAMA_ENDPOINT"
	EnvOllamaModel     = "OLLAMA_MODEL"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvOpenAIModel     = "OPENAI_MODEL"
)

// DefaultEnvFile is loaded when present; its absence is not an error.
const DefaultEnvFile = ".env"

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. When set it must exist.
	ConfigFile string
	// EnvFile is a dotenv file whose values override the process environment.
	// A missing DefaultEnvFile is ignored; any other missing file is an error.
	EnvFile string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load builds the configuration from defaults, the YAML file, the env file and
// the process environment, in increasing order of precedence except that the
// env file wins over the process environment.
func Load(opts LoadOptions) (Config, error) {
	cfg := GetDefaultConfig()

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", opts.ConfigFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", opts.ConfigFile, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", opts.ConfigFile)
	}

	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return Config{}, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	applyEnv(&cfg, func(key string) (string, bool) {
		if v, ok := dotenv[key]; ok {
			return v, true
		}
		return lookup(key)
	})

	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultEnvFile {
			logging.Debug("ConfigLoader", "No %s file found, using process environment only", path)
			return nil, nil
		}
		return nil, fmt.Errorf("error loading env file %s: %w", path, err)
	}

	logging.Debug("ConfigLoader", "Loaded %d variables from %s", len(values), path)
	return values, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	set(EnvRealmURL, &cfg.Auth.RealmURL)
	set(EnvMCPServerURL, &cfg.MCP.URL)

	if v, ok := lookup(EnvRunningInProduction); ok {
		cfg.Keepalive.Enabled = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	if v, ok := lookup(EnvAPIHost); ok {
		cfg.Backend.Host = BackendHost(strings.ToLower(strings.TrimSpace(v)))
	}

	set(EnvAzureEndpoint, &cfg.Backend.Azure.Endpoint)
	set(EnvAzureDeployment, &cfg.Backend.Azure.Deployment)
	set(EnvAzureVersion, &cfg.Backend.Azure.APIVersion)
	set(EnvAzureAPIKey, &cfg.Backend.Azure.APIKey)
	set(EnvGitHubToken, &cfg.Backend.GitHub.Token)
	set(EnvGitHubModel, &cfg.Backend.GitHub.Model)
	set(EnvOllamaEndpoint, &cfg.Backend.Ollama.Endpoint)
	set(EnvOllamaModel, &cfg.Backend.Ollama.Model)
	set(EnvOpenAIAPIKey, &cfg.Backend.OpenAI.APIKey)
	set(EnvOpenAIModel, &cfg.Backend.OpenAI.Model)
}
