package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/workspace"
)

func newBranchCmd() *cobra.Command {
	var startPoint string

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches or create a new one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			if len(args) == 0 {
				names, err := ws.ListBranches()
				if err != nil {
					return err
				}
				for _, name := range names {
					marker := "  "
					if name == ws.BranchName() {
						marker = "* "
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, name)
				}
				return nil
			}

			if err := ws.CreateBranch(args[0], startPoint); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created branch %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&startPoint, "start", "", "branch or ref to start from (default: current branch)")
	return cmd
}
