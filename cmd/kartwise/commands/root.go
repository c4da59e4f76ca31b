// Package commands defines all Cobra CLI commands for the kartwise binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/kartwise/kartwise/internal/audit"
	"github.com/kartwise/kartwise/internal/config"
	"github.com/kartwise/kartwise/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kartwise",
		Short: "Kartwise — a conversational shopping assistant",
		Long: `Kartwise is a conversational product-search assistant.

It builds a knowledge base from the product catalog (with a built-in
fallback set for offline use), indexes it in Qdrant, and answers
natural-language shopping queries through hybrid keyword + vector
retrieval.

Connection settings come from environment variables or a YAML config
file (~/.kartwise/config.yaml).
See 'kartwise --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.kartwise/config.yaml)")

	root.AddCommand(
		NewChatCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
