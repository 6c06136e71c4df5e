package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(opts *options) *cobra.Command {
	var (
		name  string
		index int
	)

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print one tree as an indented outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := load(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if name != "" {
				index = -1
				for i, nt := range sample.Trees {
					if nt.Name == name {
						index = i
						break
					}
				}
				if index < 0 {
					return fmt.Errorf("No tree named '%s' in %s.", name, args[0])
				}
			}
			if index < 0 || index >= len(sample.Trees) {
				return fmt.Errorf("Tree index %d out of range; %s has %d trees.",
					index, args[0], len(sample.Trees))
			}
			nt := sample.Trees[index]
			if nt.Tree == nil {
				return fmt.Errorf("Tree '%s' could not be parsed.", nt.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s", nt.Name, nt.Tree)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the tree to show")
	cmd.Flags().IntVar(&index, "index", 0, "position of the tree to show, from 0")

	return cmd
}
