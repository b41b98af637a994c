package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/object"
	"github.com/odvcencio/treedb/pkg/workspace"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var reverse bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			order := object.WalkTime
			if reverse {
				order = object.WalkTimeReverse
			}
			w, err := ws.Walk(order)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown := 0
			for w.Next() {
				if limit > 0 && shown >= limit {
					break
				}
				shown++

				c := w.Commit()
				if oneline {
					fmt.Fprintf(out, "%s %s\n", color.YellowString(shortHash(string(w.Hash()))), c.Message)
					continue
				}
				fmt.Fprintf(out, "commit %s\n", color.YellowString(string(w.Hash())))
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", c.Author.Time().Format("2006-01-02 15:04:05 -0700"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return w.Err()
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "oldest first")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max commits to show (0 = all)")
	return cmd
}
