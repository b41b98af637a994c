package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/workspace"
)

func newPutCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "put <path> [file]",
		Short: "Store content at a path and commit it",
		Long: "Reads content from the given file (or stdin when omitted), adds it " +
			"to the index at the slash-separated path, and commits the change. " +
			"With --message empty a default message naming the path is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]

			var content []byte
			var err error
			if len(args) == 2 {
				content, err = os.ReadFile(args[1])
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read content: %w", err)
			}

			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			if message == "" {
				message = fmt.Sprintf("put %s", target)
			}

			h, err := ws.CommitOnSuccess(message, nil, nil, func() error {
				_, err := ws.AddBlob(target, content)
				return err
			})
			if err != nil {
				return err
			}
			if h == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", ws.BranchName(), shortHash(string(h)), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
