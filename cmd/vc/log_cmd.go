package main

import (
	"context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var logBranch string

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "List registered versions, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			entries, err := eng.Log(ctx, logBranch)
			if err != nil {
				return err
			}

			tw := newTableWriter()
			tw.AppendHeader(table.Row{"N", "BRANCH", "TIMESTAMP", "MESSAGE"})
			for _, e := range entries {
				tw.AppendRow(table.Row{e.N, e.Branch, e.Timestamp.Format("2006-01-02T15:04:05Z07:00"), e.Message})
			}
			cmd.Println(tw.Render())
			return nil
		},
	}
}

func init() {
	cmd := newLogCmd()
	cmd.Flags().StringVar(&logBranch, "branch", "", "restrict to this branch's versions")
	rootCmd.AddCommand(cmd)
}
