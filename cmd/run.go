package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcpagent/internal/agent"
	"mcpagent/internal/backend"
	"mcpagent/internal/config"
	"mcpagent/internal/oauth"
	"mcpagent/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
)

const (
	defaultQuery        = "yesterday I bought a laptop for $1200 using my visa."
	defaultInstructions = "You help users to log expenses."
)

var (
	runConfigFile   string
	runEnvFile      string
	runDebug        bool
	runLogLevel     string
	runQuery        string
	runInstructions string
)

func registerRunFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&runConfigFile, "config", "", "Optional YAML configuration file")
	cmd.PersistentFlags().StringVar(&runEnvFile, "env-file", config.DefaultEnvFile, "Dotenv file whose values override the environment")
	cmd.PersistentFlags().BoolVar(&runDebug, "debug", false, "Enable debug logging (same as --log-level=debug)")
	cmd.PersistentFlags().StringVar(&runLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&runQuery, "query", defaultQuery, "Request sent to the model")
	cmd.Flags().StringVar(&runInstructions, "instructions", defaultInstructions, "System instructions for the model")
}

// initLogging installs the CLI logger on the command's error stream.
// --debug takes precedence over --log-level.
func initLogging(cmd *cobra.Command) error {
	level, ok := logging.ParseLevel(runLogLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", runLogLevel)
	}
	if runDebug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, cmd.ErrOrStderr())
	return nil
}

// interruptedBySignal reports whether err is only the echo of ctx being
// cancelled by a shutdown signal.
func interruptedBySignal(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func loadConfig() (config.Config, error) {
	return config.Load(config.LoadOptions{
		ConfigFile: runConfigFile,
		EnvFile:    runEnvFile,
	})
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildAgent(cmd)
	if err != nil {
		return err
	}

	logging.Info("Bootstrap", "Starting run %s", a.RunID())
	if err := a.Run(ctx); err != nil && !interruptedBySignal(ctx, err) {
		logging.Error("Bootstrap", err, "Run %s failed", a.RunID())
		return err
	}

	if ctx.Err() != nil {
		logging.Info("Bootstrap", "Received shutdown signal, exiting")
		notifySystemd(daemon.SdNotifyStopping)
	}
	return nil
}

// buildAgent loads configuration and wires the pipeline components.
func buildAgent(cmd *cobra.Command) (*agent.Agent, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	desc, err := backend.Resolve(cfg.Backend)
	if err != nil {
		return nil, err
	}
	logging.Debug("Bootstrap", "Using chat backend %s", desc)

	chatOpts := []backend.ChatOption{backend.WithInstructions(runInstructions)}
	if desc.UsesEntraID() {
		cred, err := backend.NewDefaultAzureCredential()
		if err != nil {
			return nil, err
		}
		logging.Info("Bootstrap", "Authenticating to Azure OpenAI with Entra ID")
		chatOpts = append(chatOpts, backend.WithTokenCredential(cred))
	}

	headers := oauth.NewHeaderBuilder(cfg.Auth.RealmURL)
	if !headers.Enabled() {
		logging.Warn("Bootstrap", "KEYCLOAK_REALM_URL is empty, the MCP server will be called without authentication")
	}
	keepalive := agent.NewKeepalive(cfg.Keepalive.Enabled,
		agent.WithTokenExpiry(func() time.Time {
			if token := headers.Token(); token != nil {
				return token.Expiry
			}
			return time.Time{}
		}),
		agent.WithIdleHook(func() { notifySystemd(daemon.SdNotifyReady) }),
		agent.WithHeartbeatHook(func(int) { notifySystemd(daemon.SdNotifyWatchdog) }),
	)

	return agent.New(agent.Options{
		Endpoint:     cfg.MCP.URL,
		EndpointName: cfg.MCP.Name,
		Headers:      headers,
		Runner:       backend.NewChatRunner(desc, chatOpts...),
		Prompt:       agent.BuildPrompt(time.Now(), runQuery),
		Keepalive:    keepalive,
		Output:       cmd.OutOrStdout(),
	}), nil
}
