package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"mcpagent/internal/backend"
	"mcpagent/internal/session"
	"mcpagent/pkg/logging"

	"github.com/google/uuid"
)

// HeaderSource produces the request headers for the connection.
// A nil map means the connection is unauthenticated.
type HeaderSource interface {
	BuildHeaders(ctx context.Context) (map[string]string, error)
}

// Runner executes one request against the tools of a connection.
type Runner interface {
	Run(ctx context.Context, prompt string, tools backend.ToolProvider) (string, error)
}

// Options configures an Agent.
type Options struct {
	// Endpoint is the streamable HTTP URL of the tool server.
	Endpoint string
	// EndpointName is used in log lines only.
	EndpointName string
	Headers      HeaderSource
	// Dialer defaults to session.NewStreamableHTTPDialer().
	Dialer session.Dialer
	Runner Runner
	Prompt string
	// Keepalive may be nil, which behaves like a disabled keepalive.
	Keepalive *Keepalive
	// Output receives the request result. Defaults to os.Stdout.
	Output io.Writer
}

// Agent runs the pipeline: acquire headers, connect, run one request, then
// idle while keeping the connection open.
type Agent struct {
	opts  Options
	runID string
}

// New creates an Agent.
func New(opts Options) *Agent {
	if opts.Dialer == nil {
		opts.Dialer = session.NewStreamableHTTPDialer()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.EndpointName == "" {
		opts.EndpointName = opts.Endpoint
	}
	return &Agent{opts: opts, runID: uuid.NewString()}
}

// RunID identifies this process run in logs.
func (a *Agent) RunID() string {
	return a.runID
}

// Run executes the pipeline. Any failure before or during the request is
// returned and the idle phase is never entered. Once idle, Run returns nil
// when ctx is cancelled; the connection is closed on every path.
func (a *Agent) Run(ctx context.Context) error {
	if a.opts.Runner == nil {
		return errors.New("no request runner configured")
	}

	logging.Debug("Agent", "Starting run %s", a.runID)

	var headers map[string]string
	if a.opts.Headers != nil {
		var err error
		headers, err = a.opts.Headers.BuildHeaders(ctx)
		if err != nil {
			return err
		}
	}

	if headers != nil {
		logging.Info("Agent", "Auth enabled - connecting to %s with Bearer token", a.opts.Endpoint)
	} else {
		logging.Info("Agent", "No auth - connecting to %s", a.opts.Endpoint)
	}

	return session.WithConnection(ctx, a.opts.Dialer, a.opts.Endpoint, headers, func(ctx context.Context, s *session.Session) error {
		logging.Debug("Agent", "Connected to %s at %s", a.opts.EndpointName, s.URL())

		result, err := a.opts.Runner.Run(ctx, a.opts.Prompt, s)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.opts.Output, result)

		return a.opts.Keepalive.Run(ctx)
	})
}

// BuildPrompt prefixes query with the current date, so relative dates in the
// query ("yesterday") can be resolved by the model.
func BuildPrompt(now time.Time, query string) string {
	return fmt.Sprintf("Today's date is %s. %s", now.Format("2006-01-02"), query)
}
