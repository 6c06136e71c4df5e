package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joklawitter/algo-phylo/taxon"
)

func newTaxaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "taxa <file>",
		Short: "List the taxa of a file with their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := load(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			for i := 0; i < sample.Taxa.Len(); i++ {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i,
					sample.Taxa.Name(taxon.ID(i)))
			}
			return nil
		},
	}
}
