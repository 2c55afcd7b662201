package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mongovc/mongovc/internal/codec"
	"github.com/mongovc/mongovc/internal/engine"
)

func opKindLabel(k codec.OpKind) string {
	if k == codec.OpDelete {
		return "delete"
	}
	return "set"
}

func pathLabel(p codec.Path) string {
	segs := make([]string, len(p))
	for i, seg := range p {
		if seg.IsIndex {
			segs[i] = strconv.Itoa(seg.Index)
		} else {
			segs[i] = seg.Key
		}
	}
	return strings.Join(segs, ".")
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [n1 branch1 n2 branch2]",
		Short: "Diff two versions, or the working tree against the checked-out version if no versions are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 4 {
				return errors.New("requires either no arguments or n1 branch1 n2 branch2")
			}

			ctx := context.Background()
			eng, _, err := openEngine(ctx, cmd)
			if err != nil {
				return err
			}
			defer eng.Close(ctx)

			var diffs []engine.DocDiff
			if len(args) == 0 {
				diffs, err = eng.DiffWorkingTree(ctx)
			} else {
				n1, err1 := strconv.Atoi(args[0])
				n2, err2 := strconv.Atoi(args[2])
				if err1 != nil || err2 != nil {
					return errors.New("n1 and n2 must be integers")
				}
				diffs, err = eng.DiffVersions(ctx, n1, args[1], n2, args[3])
			}
			if err != nil {
				return err
			}

			for _, d := range diffs {
				cmd.Printf("%s\n", d.DocumentID)
				for _, op := range d.Delta.Forward {
					if op.Kind == codec.OpDelete {
						cmd.Printf("  %s %s\n", opKindLabel(op.Kind), pathLabel(op.Path))
						continue
					}
					valStr, err := valueJSON(op.Value)
					if err != nil {
						return err
					}
					cmd.Printf("  %s %s = %s\n", opKindLabel(op.Kind), pathLabel(op.Path), valStr)
				}
			}
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newDiffCmd())
}
