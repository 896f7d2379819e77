package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mcpagent/pkg/logging"
	pkgstrings "mcpagent/pkg/strings"

	"golang.org/x/oauth2"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	subsystem = "OAuth"
)

// Client talks to a Keycloak-style realm: it registers a client dynamically
// and exchanges the resulting credentials for an access token.
// Every call is a single attempt.
type Client struct {
	realmURL   string
	httpClient *http.Client
	now        func() time.Time
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock overrides the clock used for client names and token expiry.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new OAuth client for the given realm base URL.
func NewClient(realmURL string, opts ...ClientOption) *Client {
	c := &Client{
		realmURL:   strings.TrimRight(realmURL, "/"),
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RegistrationEndpoint returns the dynamic client registration URL.
func (c *Client) RegistrationEndpoint() string {
	return c.realmURL + RegistrationPath
}

// TokenEndpoint returns the token URL.
func (c *Client) TokenEndpoint() string {
	return c.realmURL + TokenPath
}

// RegisterClient registers a new confidential client for the client-credentials grant.
// 200 and 201 are both accepted; any other status yields a *RegistrationError.
func (c *Client) RegisterClient(ctx context.Context) (*ClientIdentity, error) {
	logging.Info(subsystem, "Registering client via DCR...")

	payload, err := json.Marshal(NewRegistrationRequest(c.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RegistrationEndpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("registration request failed: %w", err)
	}

	if status != http.StatusOK && status != http.StatusCreated {
		logging.Debug(subsystem, "Registration failed with status %d", status)
		return nil, &RegistrationError{StatusCode: status, Body: string(body)}
	}

	var identity ClientIdentity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, &RegistrationError{StatusCode: status, Body: string(body), Err: fmt.Errorf("failed to parse registration response: %w", err)}
	}
	if identity.ClientID == "" {
		return nil, &RegistrationError{StatusCode: status, Body: string(body), Err: errors.New("response is missing client_id")}
	}
	if identity.ClientSecret.IsEmpty() {
		return nil, &RegistrationError{StatusCode: status, Body: string(body), Err: errors.New("response is missing client_secret")}
	}

	logging.Info(subsystem, "Registered client: %s", pkgstrings.MaskIdentifier(identity.ClientID, pkgstrings.DefaultIDPrefixLen))
	return &identity, nil
}

// ExchangeClientCredentials obtains an access token with the client-credentials grant.
// Only status 200 is accepted; anything else yields a *TokenExchangeError.
func (c *Client) ExchangeClientCredentials(ctx context.Context, identity *ClientIdentity) (*oauth2.Token, error) {
	if identity == nil {
		return nil, errors.New("client identity is nil")
	}

	logging.Info(subsystem, "Getting access token from Keycloak...")

	data := url.Values{
		"grant_type":    {GrantTypeClientCredentials},
		"client_id":     {identity.ClientID},
		"client_secret": {identity.ClientSecret.Value()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenEndpoint(), strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	if status != http.StatusOK {
		logging.Debug(subsystem, "Token request failed with status %d", status)
		return nil, &TokenExchangeError{StatusCode: status, Body: string(body)}
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TokenExchangeError{StatusCode: status, Body: string(body), Err: fmt.Errorf("failed to parse token response: %w", err)}
	}
	if resp.AccessToken == "" {
		return nil, &TokenExchangeError{StatusCode: status, Body: string(body), Err: errors.New("response is missing access_token")}
	}

	token := &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
	}

	expires := "?"
	if resp.ExpiresIn != nil {
		token.ExpiresIn = *resp.ExpiresIn
		if *resp.ExpiresIn > 0 {
			token.Expiry = c.now().Add(time.Duration(*resp.ExpiresIn) * time.Second)
		}
		expires = fmt.Sprintf("%d", *resp.ExpiresIn)
	}

	logging.Info(subsystem, "Got access token (expires in %ss)", expires)
	return token, nil
}

// do sends req and returns the status code and the full response body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
