package oauth

import (
	"fmt"

	pkgstrings "mcpagent/pkg/strings"
)

// RegistrationError reports a failed dynamic client registration.
// It is fatal to the run and never retried.
type RegistrationError struct {
	StatusCode int
	Body       string
	// Err is set when the endpoint answered with an accepted status
	// but the response could not be used.
	Err error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("DCR registration failed: %d - %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("DCR registration failed: %d - %s", e.StatusCode, pkgstrings.TruncateDescription(e.Body, pkgstrings.DefaultBodyMaxLen))
}

// Unwrap returns the underlying cause, if any.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// TokenExchangeError reports a failed client-credentials token request.
// It is fatal to the run and never retried.
type TokenExchangeError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *TokenExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Token request failed: %d - %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("Token request failed: %d - %s", e.StatusCode, pkgstrings.TruncateDescription(e.Body, pkgstrings.DefaultBodyMaxLen))
}

// Unwrap returns the underlying cause, if any.
func (e *TokenExchangeError) Unwrap() error {
	return e.Err
}
