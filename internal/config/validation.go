package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the configuration for values that would make the run fail
// late. Secrets are never echoed back in the errors.
func Validate(cfg Config) error {
	var errs ValidationErrors
	validateConnection(cfg, &errs)
	validateBackend(cfg.Backend, &errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateConnection checks only what is needed to reach the MCP endpoint,
// for commands that never talk to a chat backend.
func ValidateConnection(cfg Config) error {
	var errs ValidationErrors
	validateConnection(cfg, &errs)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateConnection(cfg Config, errs *ValidationErrors) {
	if strings.TrimSpace(cfg.MCP.URL) == "" {
		errs.Add("mcp.url", "is required")
	} else if err := validateHTTPURL(cfg.MCP.URL); err != nil {
		errs.Add("mcp.url", err.Error(), cfg.MCP.URL)
	}

	if cfg.Auth.RealmURL != "" {
		if err := validateHTTPURL(cfg.Auth.RealmURL); err != nil {
			errs.Add("auth.realmURL", err.Error(), cfg.Auth.RealmURL)
		}
	}
}

func validateBackend(backend BackendConfig, errs *ValidationErrors) {
	switch backend.Host {
	case BackendHostGitHub:
		if strings.TrimSpace(backend.GitHub.Token) == "" {
			errs.Add("backend.github.token", fmt.Sprintf("is required (set %s)", EnvGitHubToken))
		}
	case BackendHostAzure:
		if strings.TrimSpace(backend.Azure.Endpoint) == "" {
			errs.Add("backend.azure.endpoint", fmt.Sprintf("is required (set %s)", EnvAzureEndpoint))
		}
		if strings.TrimSpace(backend.Azure.Deployment) == "" {
			errs.Add("backend.azure.deployment", fmt.Sprintf("is required (set %s)", EnvAzureDeployment))
		}
	}
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("must be a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}
