package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(state *cli) *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert default reference data",
	}
	seed.AddCommand(&cobra.Command{
		Use:   "document-types",
		Short: "Insert the default village document categories when the registry is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := state.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.DocumentTypes.SeedDefaults(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "document types already present, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d document types\n", n)
			return nil
		},
	})
	return seed
}
