package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lspmcp/internal/config"
	"lspmcp/internal/languages"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	Long: `List the language tags accepted by init_lsp_client, the file
extensions mapped to each, and the configured default server command.`,
	RunE: runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configRootFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, lang := range languages.All() {
		command := "(not configured)"
		if sc, ok := cfg.Server(lang.Tag); ok && sc.Command != "" {
			command = sc.Command
			if len(sc.Args) > 0 {
				command += " " + strings.Join(sc.Args, " ")
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-30s %s\n",
			lang.Tag, strings.Join(lang.Extensions, ","), command)
	}
	return nil
}
