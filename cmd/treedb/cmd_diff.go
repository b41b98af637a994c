package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/object"
	"github.com/odvcencio/treedb/pkg/tree"
	"github.com/odvcencio/treedb/pkg/workspace"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <rev-a> <rev-b>",
		Short: "Show structural changes between two revisions",
		Long: "Each revision is a branch name or a commit hash. The change set " +
			"lists every path added, removed, or modified between the two trees.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := workspace.Open(".")
			if err != nil {
				return err
			}
			defer ws.Close()

			before, err := resolveTree(ws, args[0])
			if err != nil {
				return err
			}
			after, err := resolveTree(ws, args[1])
			if err != nil {
				return err
			}

			changes, err := tree.Diff(ws.Store(), before, after)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range changes {
				line := fmt.Sprintf("%s %s", changeMarker(c.Type), c.Path)
				switch c.Type {
				case tree.Added:
					fmt.Fprintln(out, color.GreenString(line))
				case tree.Removed:
					fmt.Fprintln(out, color.RedString(line))
				default:
					fmt.Fprintln(out, color.YellowString(line))
				}
			}
			return nil
		},
	}
	return cmd
}

// resolveTree maps a branch name or commit hash to the commit's tree.
func resolveTree(ws *workspace.Workspace, rev string) (object.Hash, error) {
	store := ws.Store()

	h, err := store.ResolveRef("refs/heads/" + rev)
	if err != nil {
		// Not a branch: try it as a commit hash.
		if !store.Has(object.Hash(rev)) {
			return "", fmt.Errorf("revision %q: not a branch or commit", rev)
		}
		h = object.Hash(rev)
	}

	commit, err := store.ReadCommit(h)
	if err != nil {
		return "", fmt.Errorf("revision %q: %w", rev, err)
	}
	return commit.TreeHash, nil
}

func changeMarker(t tree.ChangeType) string {
	switch t {
	case tree.Added:
		return "A"
	case tree.Removed:
		return "D"
	default:
		return "M"
	}
}
