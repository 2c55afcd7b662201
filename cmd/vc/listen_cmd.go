package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Run the change listener in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			eng, rc, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			cmd.Printf("listening on %s (context %q), Ctrl-C to stop\n", rc.ctx.Target, rc.name)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			cmd.Println("shutting down")
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newListenCmd())
}
