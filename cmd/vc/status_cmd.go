package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current version, branch, and pending change counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			st, err := eng.Status(ctx)
			if err != nil {
				return err
			}

			branchLabel := st.CurrentBranch
			if st.Detached {
				branchLabel = "detached"
			}
			cmd.Printf("version:    (%d, %s)\n", st.CurrentN, st.CurrentBranch)
			cmd.Printf("head:       %s\n", branchLabel)
			cmd.Printf("pending:    %d\n", st.PendingCount)
			cmd.Printf("stash:      %t\n", st.HasStash)
			cmd.Printf("conflicts:  %t\n", st.HasConflicts)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newStatusCmd())
}
