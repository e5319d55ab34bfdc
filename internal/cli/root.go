// Package cli holds the library command line: the HTTP server plus small
// administrative commands that work directly on the database.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entrypoint"
)

// ConfigLoader produces the configuration a command runs with.
type ConfigLoader func() *config.Config

// NewRootCommand builds the library command tree. Running it without a
// subcommand starts the server.
func NewRootCommand(version string, load ConfigLoader) *cobra.Command {
	serve := newServeCommand(version, load)

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog web application",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(serve, newCreateUserCommand(load), newMigrateCommand(load))
	return root
}

func newServeCommand(version string, load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(load(), version)
		},
	}
}
