package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cppla/forumcore/config"
	"github.com/cppla/forumcore/repository"
)

// NewMigrateCommand creates or updates the posts table and exits.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := config.OpenDatabase(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := repository.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
