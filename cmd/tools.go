package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"mcpagent/internal/config"
	"mcpagent/internal/oauth"
	"mcpagent/internal/session"
	"mcpagent/pkg/logging"
	pkgstrings "mcpagent/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// toolDescriptionMaxLen keeps the table within a terminal line.
const toolDescriptionMaxLen = 80

// newToolsCmd creates the command listing the tools of the configured server.
// It authenticates the same way the root command does but never contacts a
// chat backend.
func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools exposed by the MCP server",
		Args:  cobra.NoArgs,
		RunE:  runTools,
	}
}

func runTools(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.ValidateConnection(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	builder := oauth.NewHeaderBuilder(cfg.Auth.RealmURL)
	if !builder.Enabled() {
		logging.Warn("Tools", "KEYCLOAK_REALM_URL is empty, listing tools without authentication")
	}
	headers, err := builder.BuildHeaders(ctx)
	if err != nil {
		return err
	}

	return session.WithConnection(ctx, nil, cfg.MCP.URL, headers, func(ctx context.Context, s *session.Session) error {
		logging.Debug("Tools", "Listing tools of %s", s.URL())
		tools, err := s.ListTools(ctx)
		if err != nil {
			return err
		}
		renderTools(cmd.OutOrStdout(), tools)
		return nil
	})
}

func renderTools(w io.Writer, tools []mcp.Tool) {
	if len(tools) == 0 {
		fmt.Fprintln(w, "No tools found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NAME", "DESCRIPTION"})
	for _, tool := range tools {
		t.AppendRow(table.Row{tool.Name, pkgstrings.TruncateDescription(tool.Description, toolDescriptionMaxLen)})
	}
	t.Render()
}
