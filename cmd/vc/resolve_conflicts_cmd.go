package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/resolver"
	"github.com/mongovc/mongovc/internal/sync"
)

var (
	resolveTool string
	resolveArgs []string
)

func newResolveConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve_conflicts",
		Short: "Run the configured external merge tool over every unresolved conflict",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resolveTool == "" {
				return fmt.Errorf("resolve_conflicts: --tool is required")
			}

			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			conflicts, err := eng.Store().Conflicts.All(ctx)
			if err != nil {
				return err
			}
			if len(conflicts) == 0 {
				cmd.Println("no conflicts to resolve")
				return nil
			}

			conf := resolver.DefaultConfig()
			conf.Command = resolveTool
			conf.Args = resolveArgs
			r := resolver.New(conf)

			var resolutions []sync.Resolution
			for _, c := range conflicts {
				dest, err := codec.DecodeValueBytes(c.Destination)
				if err != nil {
					return err
				}
				source, err := codec.DecodeValueBytes(c.Source)
				if err != nil {
					return err
				}
				merged, err := codec.DecodeValueBytes(c.Merged)
				if err != nil {
					return err
				}

				resolved, err := r.Resolve(ctx, dest, source, merged)
				if err != nil {
					cmd.Printf("%s: %v\n", c.DocumentID, err)
					continue
				}
				resolutions = append(resolutions, sync.Resolution{DocumentID: c.DocumentID, Merged: resolved})
			}
			if len(resolutions) == 0 {
				return fmt.Errorf("resolve_conflicts: no conflict was resolved")
			}

			// Wrap the open engine as the local half of a Syncer: ResolveConflicts only ever
			// touches the local side, so the remote handle is unused here.
			if err := sync.New(eng, eng).ResolveConflicts(ctx, resolutions); err != nil {
				return err
			}
			cmd.Printf("resolved %d of %d conflicts\n", len(resolutions), len(conflicts))
			return nil
		},
	}
}

func init() {
	cmd := newResolveConflictsCmd()
	cmd.Flags().StringVar(&resolveTool, "tool", "", "external merge tool to invoke per conflicted document")
	cmd.Flags().StringArrayVar(&resolveArgs, "tool-arg", nil, "extra argument passed to the merge tool before the three file paths (repeatable)")
	rootCmd.AddCommand(cmd)
}
