// Package agent runs the mcpagent pipeline.
//
// An Agent acquires request headers from a HeaderSource, opens a scoped
// session to the configured MCP endpoint, hands the session's tools to a
// Runner for exactly one request and prints the result. If a Keepalive is
// enabled it then idles inside the same connection scope, logging a heartbeat
// every DefaultHeartbeatInterval until the context is cancelled.
//
// Failures during authentication, connection or the request are returned to
// the caller unchanged; the idle phase is only entered after a successful
// request. The session is closed exactly once on every path.
//
//	a := agent.New(agent.Options{
//		Endpoint:  cfg.MCP.URL,
//		Headers:   oauth.NewHeaderBuilder(cfg.Auth.RealmURL),
//		Runner:    backend.NewChatRunner(desc),
//		Prompt:    agent.BuildPrompt(time.Now(), query),
//		Keepalive: agent.NewKeepalive(cfg.Keepalive.Enabled),
//	})
//	err := a.Run(ctx)
package agent
