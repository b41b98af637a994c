package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/workspace"
)

func newInitCmd() *cobra.Command {
	var branch string
	var backend string

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			cfg := workspace.DefaultConfig()
			if branch != "" {
				cfg.DefaultBranch = branch
			}
			if backend != "" {
				cfg.Backend = backend
			}

			ws, err := workspace.Init(dir, cfg)
			if err != nil {
				return err
			}
			defer ws.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty store in %s (branch %s, backend %s)\n",
				dir, cfg.DefaultBranch, cfg.Backend)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "default branch name (default: main)")
	cmd.Flags().StringVar(&backend, "backend", "", "storage backend: fs or badger (default: fs)")
	return cmd
}
