package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/logging"
)

func newCreateUserCommand(load ConfigLoader) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user that can log in and edit the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			db, err := database.NewDatabase(cfg.Database.URL, logging.GormLogLevel(cfg.Log.Debug))
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := auth.NewService(db.DB, cfg.Auth).Register(cmd.Context(), username, password)
			if errors.Is(err, auth.ErrUserExists) {
				return fmt.Errorf("user %q already exists", username)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "login name (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
