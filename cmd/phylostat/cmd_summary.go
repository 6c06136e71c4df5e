package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joklawitter/algo-phylo/nexus"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>...",
		Short: "Print the number of trees and taxa in each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, fileName := range args {
				sample, err := load(cmd.Context(), fileName, opts)
				if err != nil {
					return fmt.Errorf("%s: %w", fileName, err)
				}
				fmt.Fprintf(out, "%s\t%d trees\t%d taxa\t%d leaves (mean)\t%d failed\n",
					fileName, len(sample.Trees)-len(sample.Errors),
					sample.Taxa.Len(), meanLeaves(sample), len(sample.Errors))
				for _, terr := range sample.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fileName, terr)
				}
			}
			return nil
		},
	}
}

func meanLeaves(sample *nexus.Sample) int {
	total, n := 0, 0
	for _, nt := range sample.Trees {
		if nt.Tree == nil {
			continue
		}
		total += nt.Tree.NumLeaves()
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}
