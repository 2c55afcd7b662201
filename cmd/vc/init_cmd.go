package main

import (
	"context"

	"github.com/spf13/cobra"
)

var initMessage string

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Start tracking the target collection at version (0, main)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := dialEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if err := eng.Init(ctx, initMessage); err != nil {
				return err
			}
			cmd.Println("initialized (0, main)")
			return nil
		},
	}
}

func init() {
	cmd := newInitCmd()
	cmd.Flags().StringVarP(&initMessage, "message", "m", "initial version", "message recorded for the root version")
	rootCmd.AddCommand(cmd)
}
