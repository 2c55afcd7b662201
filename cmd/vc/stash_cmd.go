package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func newStashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stash [apply | discard]",
		Short: "Set pending changes aside, or apply/discard a previously set-aside stash",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("takes at most one of: apply, discard")
			}
			if len(args) == 1 && args[0] != "apply" && args[0] != "discard" {
				return errors.New("unknown stash subcommand, want apply or discard")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if len(args) == 0 {
				if err := eng.Stash(ctx); err != nil {
					return err
				}
				cmd.Println("stashed pending changes")
				return nil
			}

			switch args[0] {
			case "apply":
				if err := eng.StashApply(ctx); err != nil {
					return err
				}
				cmd.Println("applied stash")
			case "discard":
				if err := eng.StashDiscard(ctx); err != nil {
					return err
				}
				cmd.Println("discarded stash")
			}
			return nil
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(newStashCmd())
}
