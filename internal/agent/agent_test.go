package agent

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mcpagent/internal/backend"
	"mcpagent/internal/oauth"
	"mcpagent/internal/session"
	"mcpagent/internal/testing/mock"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	mu     sync.Mutex
	closes int
}

func (c *stubConn) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return []mcp.Tool{mcp.NewTool("add_expense")}, nil
}

func (c *stubConn) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("logged"), nil
}

func (c *stubConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *stubConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

// recordingDialer remembers every dial and its headers.
type recordingDialer struct {
	mu      sync.Mutex
	conn    *stubConn
	err     error
	dials   int
	headers map[string]string
}

func (d *recordingDialer) Dial(ctx context.Context, url string, headers map[string]string) (session.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.headers = headers
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

func (d *recordingDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type stubRunner struct {
	result string
	err    error
	calls  atomic.Int32
	prompt string
}

func (r *stubRunner) Run(ctx context.Context, prompt string, tools backend.ToolProvider) (string, error) {
	r.calls.Add(1)
	r.prompt = prompt
	if r.err != nil {
		return "", r.err
	}
	if _, err := tools.ListTools(ctx); err != nil {
		return "", err
	}
	return r.result, nil
}

// countingTransport counts outbound HTTP requests.
type countingTransport struct {
	requests atomic.Int32
	next     http.RoundTripper
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.requests.Add(1)
	if c.next == nil {
		return nil, errors.New("unexpected request")
	}
	return c.next.RoundTrip(r)
}

func TestAgent_NoRealmConnectsWithoutAuth(t *testing.T) {
	transport := &countingTransport{}
	builder := oauth.NewHeaderBuilder("", oauth.WithHTTPClient(&http.Client{Transport: transport}))
	dialer := &recordingDialer{conn: &stubConn{}}
	runner := &stubRunner{result: "Expense logged"}
	var out bytes.Buffer

	a := New(Options{
		Endpoint: "http://localhost:8000/mcp/",
		Headers:  builder,
		Dialer:   dialer,
		Runner:   runner,
		Prompt:   "log it",
		Output:   &out,
	})

	require.NoError(t, a.Run(context.Background()))

	assert.Zero(t, transport.requests.Load(), "no auth traffic without a realm")
	assert.Equal(t, 1, dialer.dialCount())
	assert.Nil(t, dialer.headers)
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, "log it", runner.prompt)
	assert.Equal(t, "Expense logged\n", out.String())
	assert.Equal(t, 1, dialer.conn.closeCount())
}

func TestAgent_AuthenticatedConnectionCarriesBearer(t *testing.T) {
	realm := mock.NewRealm(mock.RealmConfig{AccessToken: "tok123", TokenLifetime: 5 * time.Minute})
	defer realm.Close()
	builder := oauth.NewHeaderBuilder(realm.URL())
	dialer := &recordingDialer{conn: &stubConn{}}

	a := New(Options{
		Endpoint: "http://mcp.test/mcp/",
		Headers:  builder,
		Dialer:   dialer,
		Runner:   &stubRunner{result: "done"},
		Output:   &bytes.Buffer{},
	})

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, map[string]string{"Authorization": "Bearer tok123"}, dialer.headers)
	assert.Equal(t, 1, realm.Registrations())
	assert.Equal(t, 1, realm.TokenRequests())
	require.NotNil(t, builder.Token())
	assert.False(t, builder.Token().Expiry.IsZero())
	assert.Equal(t, 1, dialer.conn.closeCount())
}

func TestAgent_RegistrationFailureAbortsBeforeConnecting(t *testing.T) {
	realm := mock.NewRealm(mock.RealmConfig{RegistrationStatus: http.StatusBadRequest})
	defer realm.Close()
	builder := oauth.NewHeaderBuilder(realm.URL())
	dialer := &recordingDialer{conn: &stubConn{}}
	runner := &stubRunner{result: "unused"}

	ticker := mock.NewTicker()
	k := NewKeepalive(true, WithTicker(ticker.Factory))

	a := New(Options{
		Endpoint:  "http://mcp.test/mcp/",
		Headers:   builder,
		Dialer:    dialer,
		Runner:    runner,
		Keepalive: k,
		Output:    &bytes.Buffer{},
	})

	err := a.Run(context.Background())
	require.Error(t, err)

	var regErr *oauth.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, http.StatusBadRequest, regErr.StatusCode)
	assert.Contains(t, err.Error(), "DCR registration failed: 400")

	assert.Zero(t, realm.TokenRequests(), "token endpoint must not be called")
	assert.Zero(t, dialer.dialCount())
	assert.Zero(t, runner.calls.Load())
	assert.False(t, ticker.Started(), "idle mode must not be entered")
}

func TestAgent_TokenFailureAbortsBeforeConnecting(t *testing.T) {
	realm := mock.NewRealm(mock.RealmConfig{TokenStatus: http.StatusUnauthorized})
	defer realm.Close()
	dialer := &recordingDialer{conn: &stubConn{}}

	a := New(Options{
		Endpoint: "http://mcp.test/mcp/",
		Headers:  oauth.NewHeaderBuilder(realm.URL()),
		Dialer:   dialer,
		Runner:   &stubRunner{},
		Output:   &bytes.Buffer{},
	})

	err := a.Run(context.Background())

	var tokErr *oauth.TokenExchangeError
	require.ErrorAs(t, err, &tokErr)
	assert.Equal(t, http.StatusUnauthorized, tokErr.StatusCode)
	assert.Zero(t, dialer.dialCount())
}

func TestAgent_ConnectionFailure(t *testing.T) {
	dialer := &recordingDialer{err: errors.New("connection refused")}
	runner := &stubRunner{}

	a := New(Options{
		Endpoint: "http://localhost:1/mcp/",
		Dialer:   dialer,
		Runner:   runner,
		Output:   &bytes.Buffer{},
	})

	err := a.Run(context.Background())

	var connErr *session.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "http://localhost:1/mcp/", connErr.URL)
	assert.Zero(t, runner.calls.Load())
}

func TestAgent_RequestFailureSkipsIdleAndCloses(t *testing.T) {
	dialer := &recordingDialer{conn: &stubConn{}}
	ticker := mock.NewTicker()

	a := New(Options{
		Endpoint:  "http://mcp.test/mcp/",
		Dialer:    dialer,
		Runner:    &stubRunner{err: errors.New("model unavailable")},
		Keepalive: NewKeepalive(true, WithTicker(ticker.Factory)),
		Output:    &bytes.Buffer{},
	})

	err := a.Run(context.Background())

	var reqErr *session.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, err.Error(), "model unavailable")
	assert.False(t, ticker.Started())
	assert.Equal(t, 1, dialer.conn.closeCount())
}

func TestAgent_StayAliveHeartbeatsUntilCancelled(t *testing.T) {
	dialer := &recordingDialer{conn: &stubConn{}}
	ticker := mock.NewTicker()
	beats := make(chan int, 10)

	a := New(Options{
		Endpoint:  "http://mcp.test/mcp/",
		Dialer:    dialer,
		Runner:    &stubRunner{result: "done"},
		Keepalive: NewKeepalive(true, WithTicker(ticker.Factory), WithHeartbeatHook(func(n int) { beats <- n })),
		Output:    &bytes.Buffer{},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	for i := 1; i <= 2; i++ {
		ticker.Tick()
		assert.Equal(t, i, <-beats)
	}
	assert.Zero(t, dialer.conn.closeCount(), "connection stays open while idle")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("agent did not stop after cancellation")
	}

	assert.Equal(t, 1, dialer.dialCount())
	assert.Equal(t, 1, dialer.conn.closeCount())
}

func TestAgent_MissingRunner(t *testing.T) {
	dialer := &recordingDialer{conn: &stubConn{}}
	a := New(Options{Endpoint: "http://mcp.test/mcp/", Dialer: dialer})

	assert.Error(t, a.Run(context.Background()))
	assert.Zero(t, dialer.dialCount())
}

func TestAgent_RunIDIsUnique(t *testing.T) {
	a := New(Options{})
	b := New(Options{})
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestBuildPrompt(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "Today's date is 2025-03-14. bought a laptop", BuildPrompt(now, "bought a laptop"))
}

func TestAgent_EndToEndAgainstProtectedServer(t *testing.T) {
	realm := mock.NewRealm(mock.RealmConfig{AccessToken: "tok123", TokenLifetime: time.Minute})
	defer realm.Close()

	srv := mock.NewProtectedMCPServer(mock.ProtectedMCPServerConfig{
		Name:  "expenses",
		Realm: realm,
		Tools: []mock.ToolConfig{{Name: "add_expense", Description: "Log an expense", Response: "Expense logged"}},
	})
	defer srv.Close()

	var out bytes.Buffer
	a := New(Options{
		Endpoint: srv.Endpoint(),
		Headers:  oauth.NewHeaderBuilder(realm.URL()),
		Runner:   toolCallingRunner{tool: "add_expense"},
		Output:   &out,
	})

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, "Expense logged\n", out.String())
	require.Len(t, srv.Calls(), 1)
	assert.Equal(t, 1200.0, srv.Calls()[0].Arguments["amount"])
	for _, h := range srv.AuthorizationHeaders() {
		assert.Equal(t, "Bearer tok123", h)
	}
}

// toolCallingRunner calls one tool and returns its text.
type toolCallingRunner struct {
	tool string
}

func (r toolCallingRunner) Run(ctx context.Context, prompt string, tools backend.ToolProvider) (string, error) {
	result, err := tools.CallTool(ctx, r.tool, map[string]interface{}{"amount": 1200})
	if err != nil {
		return "", err
	}
	return session.ResultText(result), nil
}
