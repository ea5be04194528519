package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"bookhive-backend/internal/platform/db"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the circulation tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := db.LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Mode)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			h, err := db.Connect(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer h.Close()

			if err := db.Migrate(ctx, h); err != nil {
				return err
			}
			logger.Info("schema applied", slog.String("driver", string(h.Dialect)))
			return nil
		},
	}
}
