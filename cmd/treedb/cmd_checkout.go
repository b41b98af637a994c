package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/workspace"
)

func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch the workspace to another branch",
		Long: "Switches the tracked branch and records it as the store default, " +
			"so later invocations open the same branch.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.SetBranch(args[0]); err != nil {
				return err
			}
			if err := ws.SaveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "switched to branch %s\n", args[0])
			return nil
		},
	}
	return cmd
}
