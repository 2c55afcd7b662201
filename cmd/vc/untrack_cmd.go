package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var untrackYes bool

func newUntrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrack",
		Short: "Stop versioning the target collection, dropping its version history but keeping its documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !untrackYes {
				ok, err := confirmUntrack(cmd)
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println("aborted")
					return nil
				}
			}

			ctx := context.Background()
			eng, rc, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			if err := eng.Untrack(ctx); err != nil {
				return err
			}
			cmd.Printf("untracked %q; its documents were left in place\n", rc.ctx.Target)
			return nil
		},
	}
}

func confirmUntrack(cmd *cobra.Command) (bool, error) {
	cmd.Print("this drops the version history; the target collection's documents are kept. continue? [y/N]: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}

func init() {
	cmd := newUntrackCmd()
	cmd.Flags().BoolVarP(&untrackYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cmd)
}
