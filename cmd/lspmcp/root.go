package main

import (
	"github.com/spf13/cobra"

	"lspmcp/internal/version"
)

var (
	// configRootFlag is the CLI --config-root flag value
	configRootFlag string
)

var rootCmd = &cobra.Command{
	Use:   "lspmcp",
	Short: "lspmcp - LSP tools over MCP",
	Long: `lspmcp exposes Language Server Protocol capabilities (definitions,
references, outlines, hover documentation, workspace symbol search) as Model
Context Protocol tools for an AI agent. It spawns the language server you
name, holds one session per workspace, and forwards one tool call at a time.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&configRootFlag, "config-root", ".",
		"Directory whose .lspmcp/config.yaml is loaded")
}
