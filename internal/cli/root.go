// Package cli wires the bookhive commands: serve, migrate and token.
package cli

import (
	"github.com/spf13/cobra"

	"bookhive-backend/internal/platform/db"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "bookhive",
		Short:         "BookHive circulation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", db.DefaultConfigPath, "path to config.yaml")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
