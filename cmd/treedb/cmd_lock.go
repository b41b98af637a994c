package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/workspace"
)

func newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock <id> -- <command> [args...]",
		Short: "Run a command while holding an advisory lock",
		Long: "Acquires the advisory lock named id (waiting up to the configured " +
			"timeout if another holder exists), runs the command, and releases " +
			"the lock on exit.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			id := args[0]
			return ws.WithLock(id, func() error {
				child := exec.Command(args[1], args[2:]...)
				child.Stdin = os.Stdin
				child.Stdout = cmd.OutOrStdout()
				child.Stderr = cmd.ErrOrStderr()
				if err := child.Run(); err != nil {
					return fmt.Errorf("run under lock %q: %w", id, err)
				}
				return nil
			})
		},
	}
	return cmd
}
