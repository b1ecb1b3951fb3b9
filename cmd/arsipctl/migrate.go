package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/arsip-desa-api/pkg/database"
)

func newMigrateCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.NewPostgres(state.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d schema statements\n", len(database.Schema))
			return nil
		},
	}
}
