// Package logging provides subsystem-tagged structured logging for mcpagent.
//
// The package wraps Go's standard slog package. Every record carries a
// "subsystem" attribute and, for errors, an "error" attribute.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("OAuth", "Registering client via DCR at %s", realmURL)
//	logging.Debug("Session", "Configured %d custom headers", len(headers))
//	logging.Warn("Keepalive", "Access token expired at %s", expiry)
//	logging.Error("Agent", err, "Request failed")
//
// # Subsystems
//
//   - **Bootstrap**: CLI startup and configuration loading
//   - **OAuth**: Dynamic client registration and token exchange
//   - **Session**: MCP streamable-HTTP connection lifecycle
//   - **Backend**: Chat completion backend calls
//   - **Agent**: Pipeline orchestration
//   - **Keepalive**: Idle heartbeat loop
//
// Messages below the configured level are dropped before formatting.
// Before InitForCLI is called only ERROR records are reported, on stderr.
package logging
