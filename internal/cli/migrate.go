package cli

import (
	"github.com/spf13/cobra"

	"eventsapi/internal/db"
	"eventsapi/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables, collections and indexes",
	Long:  `Connect to the configured database and create the schema the API needs. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := db.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		if err := store.Migrate(ctx); err != nil {
			return err
		}
		logging.Info().Str("driver", cfg.Database.Driver).Msg("migration complete")
		return nil
	},
}
