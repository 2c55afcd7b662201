package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newDiscardChangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard_changes",
		Short: "Revert every pending change, restoring the checked-out version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if err := eng.DiscardChanges(ctx); err != nil {
				return err
			}
			cmd.Println("discarded pending changes")
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newDiscardChangesCmd())
}
