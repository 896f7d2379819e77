// Package mock provides in-process fakes for the services mcpagent talks to.
//
// Realm is a fake Keycloak realm that serves dynamic client registration and
// the client credentials grant. It issues tokens it can later validate, and
// it can be told to fail either step with a given status.
//
// ProtectedMCPServer is a streamable HTTP MCP server built on mcp-go. When
// configured with a Realm it rejects requests whose bearer token the realm did
// not issue. It records the Authorization header of every request and every
// tool call so tests can assert on what the client actually sent.
//
// MockClock and Ticker replace wall-clock time for token expiry and
// heartbeat tests.
//
//	realm := mock.NewRealm(mock.RealmConfig{AccessToken: "tok123"})
//	defer realm.Close()
//
//	srv := mock.NewProtectedMCPServer(mock.ProtectedMCPServerConfig{
//		Realm: realm,
//		Tools: []mock.ToolConfig{{Name: "add_expense", Response: "ok"}},
//	})
//	defer srv.Close()
package mock
