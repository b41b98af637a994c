package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/tree"
	"github.com/odvcencio/treedb/pkg/workspace"
)

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the index tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			desc, err := tree.Describe(ws.Store(), ws.Index())
			if err != nil {
				return err
			}
			if desc == "" {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
	return cmd
}
