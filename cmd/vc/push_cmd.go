package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongovc/mongovc/internal/sync"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [remote context] [branch]",
		Short: "Fast-forward a remote context's branch pointer to the local tip; branch defaults to the local context's configured branch",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 2 {
				return errors.New("requires a remote context name, and optionally a branch name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			remoteName := args[0]

			local, rc, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer local.Close(ctx)

			branch := rc.branch
			if len(args) == 2 {
				branch = args[1]
			}
			if branch == "" {
				return fmt.Errorf("push: no branch given and context %q has no default branch", rc.name)
			}

			remote, _, err := openNamedEngine(ctx, remoteName)
			if err != nil {
				return err
			}
			defer remote.Close(ctx)

			if err := sync.New(local, remote).Push(ctx, branch); err != nil {
				return err
			}
			cmd.Printf("pushed %s to %q\n", branch, remoteName)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newPushCmd())
}
