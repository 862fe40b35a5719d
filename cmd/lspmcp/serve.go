package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"lspmcp/internal/config"
	"lspmcp/internal/logging"
	"lspmcp/internal/session"
	"lspmcp/internal/tools"
	"lspmcp/internal/version"
)

var (
	serveLogLevel  string
	serveLogFormat string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tool surface on stdio",
	Long: `Start the MCP server on stdio. The host agent connects over this
process's stdin/stdout; all logs go to stderr so they never corrupt the
protocol stream. Language-server sessions are started on demand via the
init_lsp_client tool and torn down when the transport closes.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "",
		"Log format: human or json (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configRootFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if serveLogLevel != "" {
		level = serveLogLevel
	}
	format := cfg.Logging.Format
	if serveLogFormat != "" {
		format = serveLogFormat
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  logging.ParseLevel(level),
	})

	sessions := session.NewManager(nil, cfg.Session.Policy, logger)
	adapter := tools.New(cfg, sessions, logger)

	s := server.NewMCPServer(
		"lspmcp",
		version.Version,
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)
	adapter.Register(s)

	logger.Info("starting MCP server on stdio", logging.Fields{
		"version": version.Info(),
	})

	serveErr := server.ServeStdio(s)

	// The agent may exit without calling shutdown_lsp_client; reap any
	// running language server before we go.
	if stopped, err := sessions.Shutdown(); err != nil {
		logger.Warn("unclean session shutdown", logging.Fields{"error": err.Error()})
	} else if stopped {
		logger.Info("session stopped on exit", nil)
	}

	return serveErr
}
