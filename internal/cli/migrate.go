package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/logging"
)

// newMigrateCommand creates or updates the schema without starting the server.
func newMigrateCommand(load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			// Opening the database runs the migrations.
			db, err := database.NewDatabase(cfg.Database.URL, logging.GormLogLevel(cfg.Log.Debug))
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (%s)\n", db.Dialect)
			return nil
		},
	}
}
