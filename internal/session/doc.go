// Package session manages the scoped streamable-HTTP MCP connection.
//
// A Session is an acquire/release pair: Open establishes the connection
// (transport start plus MCP initialize) and Close releases it exactly once.
// WithConnection wraps both so that release happens on every exit path:
//
//	err := session.WithConnection(ctx, session.NewStreamableHTTPDialer(), url, headers,
//		func(ctx context.Context, s *session.Session) error {
//			tools, err := s.ListTools(ctx)
//			...
//		})
//
// Connection establishment failures surface as *ConnectionError and are never
// retried. Failures inside the callback surface as *RequestError.
//
// The Dialer interface exists so tests can substitute a fake transport.
package session
