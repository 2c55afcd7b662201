package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongovc/mongovc/internal/sync"
	"github.com/mongovc/mongovc/internal/vcerrors"
)

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull [remote context] [branch]",
		Short: "Fetch a remote context's history and merge it into the local branch; branch defaults to the local context's configured branch",
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
				return fmt.Errorf("pull: no branch given and context %q has no default branch", rc.name)
			}

			remote, _, err := openNamedEngine(ctx, remoteName)
			if err != nil {
				return err
			}
			defer remote.Close(ctx)

			err = sync.New(local, remote).Pull(ctx, branch)
			if err != nil && !vcerrors.Is(err, vcerrors.ErrAutoMergeFailed) {
				return err
			}
			if err != nil {
				cmd.Println("merged with conflicts; run `vc resolve_conflicts` before registering")
				return err
			}
			cmd.Printf("pulled %s from %q\n", branch, remoteName)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newPullCmd())
}
