package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"
)

func newDeleteVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete_version [n] [branch]",
		Short: "Remove a version and everything descending from it from the log tree",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("requires a version number and a branch name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New("version number must be an integer")
			}
			branch := args[1]

			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if err := eng.DeleteVersionSubtree(ctx, n, branch); err != nil {
				return err
			}
			cmd.Printf("deleted (%d, %s) and its descendants\n", n, branch)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newDeleteVersionCmd())
}
