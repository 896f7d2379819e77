package cmd

import (
	"errors"
	"os"

	"mcpagent/internal/oauth"
	"mcpagent/internal/session"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (invalid configuration, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates client registration or token exchange failed.
	ExitCodeAuthFailed = 3
	// ExitCodeConnectionFailed indicates the MCP connection could not be established.
	ExitCodeConnectionFailed = 4
	// ExitCodeRequestFailed indicates the request over an open connection failed.
	ExitCodeRequestFailed = 5
)

// rootCmd runs the agent pipeline when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mcpagent",
	Short: "Run one agent request against an MCP server",
	Long: `mcpagent connects to a streamable HTTP MCP server, optionally authenticating
through OAuth dynamic client registration and the client credentials grant,
and runs a single request with the tools the server exposes.

With RUNNING_IN_PRODUCTION=true it stays alive after the request and logs a
heartbeat every minute until it is interrupted.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	RunE:         runPipeline,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpagent version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps pipeline failures to semantic exit codes for scripting.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var regErr *oauth.RegistrationError
	if errors.As(err, &regErr) {
		return ExitCodeAuthFailed
	}

	var tokErr *oauth.TokenExchangeError
	if errors.As(err, &tokErr) {
		return ExitCodeAuthFailed
	}

	var connErr *session.ConnectionError
	if errors.As(err, &connErr) {
		return ExitCodeConnectionFailed
	}

	var reqErr *session.RequestError
	if errors.As(err, &reqErr) {
		return ExitCodeRequestFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newToolsCmd())
	registerRunFlags(rootCmd)
}
