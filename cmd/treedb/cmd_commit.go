package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treedb/pkg/object"
	"github.com/odvcencio/treedb/pkg/workspace"
)

func newCommitCmd() *cobra.Command {
	var message string
	var authorName string
	var authorEmail string
	var sign bool
	var signingKey string

	cmd := &cobra.Command{
		Use:   "commit <path=file>...",
		Short: "Write one or more files and commit them as a single snapshot",
		Long: "Each argument maps a store path to a local file, e.g. " +
			"config/app.toml=./app.toml. All writes land in one commit; " +
			"if any write fails nothing is committed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			var opts []workspace.Option
			if sign {
				signer, keyPath, err := newSSHCommitSigner(signingKey)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "signing with %s\n", keyPath)
				opts = append(opts, workspace.WithSigner(signer))
			}

			ws, err := workspace.Open(".", opts...)
			if err != nil {
				return err
			}
			defer ws.Close()

			var author *object.Signature
			if authorName != "" {
				sig := object.MakeSignature(authorName, authorEmail, time.Time{}, ws.Config().TZOffsetMinutes)
				author = &sig
			}

			h, err := ws.CommitOnSuccess(message, author, nil, func() error {
				for _, arg := range args {
					target, file, ok := strings.Cut(arg, "=")
					if !ok {
						return fmt.Errorf("argument %q is not of the form path=file", arg)
					}
					content, err := os.ReadFile(file)
					if err != nil {
						return fmt.Errorf("read %s: %w", file, err)
					}
					if _, err := ws.AddBlob(target, content); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if h == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to commit")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", ws.BranchName(), shortHash(string(h)), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&authorName, "author", "", "override author name")
	cmd.Flags().StringVar(&authorEmail, "email", "", "override author email")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&signingKey, "signing-key", "", "path to SSH private key (default: ~/.ssh/id_*)")
	return cmd
}
