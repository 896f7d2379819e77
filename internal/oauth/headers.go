package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// AuthorizationHeader is the header carrying the bearer token.
const AuthorizationHeader = "Authorization"

// HeaderBuilder decides whether authentication is needed and, if so,
// drives registration and token exchange to produce request headers.
// A nil client means no realm is configured.
type HeaderBuilder struct {
	client *Client
	token  *oauth2.Token
}

// NewHeaderBuilder returns a builder for realmURL. An empty realmURL
// disables authentication entirely.
func NewHeaderBuilder(realmURL string, opts ...ClientOption) *HeaderBuilder {
	if realmURL == "" {
		return &HeaderBuilder{}
	}
	return &HeaderBuilder{client: NewClient(realmURL, opts...)}
}

// Enabled reports whether a realm URL is configured.
func (b *HeaderBuilder) Enabled() bool {
	return b.client != nil
}

// BuildHeaders returns nil without any network activity when no realm is
// configured. Otherwise it registers a client, exchanges its credentials and
// returns the Authorization header. Failures from either step are returned
// unchanged and no headers are produced.
func (b *HeaderBuilder) BuildHeaders(ctx context.Context) (map[string]string, error) {
	if b.client == nil {
		return nil, nil
	}

	identity, err := b.client.RegisterClient(ctx)
	if err != nil {
		return nil, err
	}

	token, err := b.client.ExchangeClientCredentials(ctx, identity)
	if err != nil {
		return nil, err
	}

	b.token = token
	return BearerHeaders(token.AccessToken), nil
}

// Token returns the token acquired by the last successful BuildHeaders, or nil.
func (b *HeaderBuilder) Token() *oauth2.Token {
	return b.token
}

// BearerHeaders returns the header map carrying accessToken verbatim.
func BearerHeaders(accessToken string) map[string]string {
	return map[string]string{AuthorizationHeader: "Bearer " + accessToken}
}
