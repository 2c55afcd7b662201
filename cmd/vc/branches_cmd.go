package main

import (
	"context"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newBranchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branches",
		Short: "List every branch and its current tip",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			branches, err := eng.Branches(ctx)
			if err != nil {
				return err
			}

			tw := newTableWriter()
			tw.AppendHeader(table.Row{"NAME", "TIP"})
			for _, b := range branches {
				tw.AppendRow(table.Row{b.Name, b.TipN})
			}
			cmd.Println(tw.Render())
			return nil
		},
	}
}

func newCreateBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create_branch [name]",
		Short: "Create a new branch forking from the currently checked-out version",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a branch name")
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

			if err := eng.CreateBranch(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("created branch %q\n", args[0])
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newBranchesCmd())
	rootCmd.AddCommand(newCreateBranchCmd())
}
