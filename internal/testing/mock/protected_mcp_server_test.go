package mock

import (
	"context"
	"testing"

	"mcpagent/internal/oauth"
	"mcpagent/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedMCPServer_Unprotected(t *testing.T) {
	srv := NewProtectedMCPServer(ProtectedMCPServerConfig{
		Tools: []ToolConfig{{Name: "add_expense", Description: "Log an expense", Response: "logged"}},
	})
	defer srv.Close()

	s, err := session.Open(context.Background(), nil, srv.Endpoint(), nil)
	require.NoError(t, err)
	defer s.Close()

	tools, err := s.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "add_expense", tools[0].Name)

	result, err := s.CallTool(context.Background(), "add_expense", map[string]interface{}{"amount": 1200})
	require.NoError(t, err)
	assert.Equal(t, "logged", session.ResultText(result))

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "add_expense", calls[0].Name)

	for _, h := range srv.AuthorizationHeaders() {
		assert.Empty(t, h)
	}
}

func TestProtectedMCPServer_RequiresRealmToken(t *testing.T) {
	realm := NewRealm(RealmConfig{AccessToken: "tok123"})
	defer realm.Close()

	srv := NewProtectedMCPServer(ProtectedMCPServerConfig{Realm: realm})
	defer srv.Close()

	_, err := session.Open(context.Background(), nil, srv.Endpoint(), nil)
	var connErr *session.ConnectionError
	require.ErrorAs(t, err, &connErr)

	headers, err := oauth.NewHeaderBuilder(realm.URL()).BuildHeaders(context.Background())
	require.NoError(t, err)

	s, err := session.Open(context.Background(), nil, srv.Endpoint(), headers)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Contains(t, srv.AuthorizationHeaders(), "Bearer tok123")
}
