package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	registerMessage string
	registerBranch  string
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Commit every pending change into a new version",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if err := eng.Register(ctx, registerMessage, registerBranch); err != nil {
				return err
			}
			cmd.Println("registered")
			return nil
		},
	}
}

func init() {
	cmd := newRegisterCmd()
	cmd.Flags().StringVarP(&registerMessage, "message", "m", "", "message recorded for the new version")
	cmd.Flags().StringVar(&registerBranch, "branch", "", "register onto this branch instead of the current one, creating it if new")
	rootCmd.AddCommand(cmd)
}
