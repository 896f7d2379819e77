package oauth

import (
	"time"
)

const (
	// RegistrationPath is the dynamic client registration endpoint, relative to the realm URL.
	RegistrationPath = "/clients-registrations/openid-connect"

	// TokenPath is the token endpoint, relative to the realm URL.
	TokenPath = "/protocol/openid-connect/token"

	// GrantTypeClientCredentials is the only grant type this client registers for and uses.
	GrantTypeClientCredentials = "client_credentials"

	// AuthMethodClientSecretBasic is the token endpoint auth method requested at registration.
	AuthMethodClientSecretBasic = "client_secret_basic"

	// ClientNamePrefix prefixes every registered client name.
	ClientNamePrefix = "agent-"

	// clientNameLayout renders the per-run timestamp as YYYYMMDD-HHMMSS.
	clientNameLayout = "20060102-150405"
)

// ClientIdentity is the client id and secret returned by dynamic client registration.
// It lives for a single token exchange and is never persisted. The secret is
// redacted whenever the identity is formatted.
type ClientIdentity struct {
	ClientID     string        `json:"client_id"`
	ClientSecret RedactedToken `json:"client_secret"`
}

// ClientRegistrationRequest is the JSON body sent to the registration endpoint.
type ClientRegistrationRequest struct {
	ClientName              string   `json:"client_name"`
	GrantTypes              []string `json:"grant_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

// tokenResponse is the subset of the token endpoint response we read.
// ExpiresIn is a pointer so an absent value can be told apart from zero.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   *int64 `json:"expires_in,omitempty"`
}

// ClientName returns the registration client name for a run started at t.
func ClientName(t time.Time) string {
	return ClientNamePrefix + t.Format(clientNameLayout)
}

// NewRegistrationRequest builds the registration body for a run started at t.
func NewRegistrationRequest(t time.Time) ClientRegistrationRequest {
	return ClientRegistrationRequest{
		ClientName:              ClientName(t),
		GrantTypes:              []string{GrantTypeClientCredentials},
		TokenEndpointAuthMethod: AuthMethodClientSecretBasic,
	}
}
