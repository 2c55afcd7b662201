package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	useURI      string
	useDatabase string
	useTarget   string
	useBranch   string
)

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use [context name]",
		Short: "Create or update a named context and select it as current",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("requires a context name")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			conf, err := loadConfig()
			if err != nil {
				return err
			}
			c := conf.Contexts[name]
			if useURI != "" {
				c.URI = useURI
			}
			if useDatabase != "" {
				c.Database = useDatabase
			}
			if useTarget != "" {
				c.Target = useTarget
			}
			if useBranch != "" {
				c.Branch = useBranch
			}
			conf.Contexts[name] = c
			conf.Current = name

			if err := saveConfig(conf); err != nil {
				return err
			}
			cmd.Printf("switched to context %q\n", name)
			return nil
		},
	}
}

func init() {
	cmd := newUseCmd()
	cmd.Flags().StringVar(&useURI, "uri", "", "MongoDB connection URI to store for this context")
	cmd.Flags().StringVar(&useDatabase, "database", "", "database name to store for this context")
	cmd.Flags().StringVar(&useTarget, "target", "", "target collection name to store for this context")
	cmd.Flags().StringVar(&useBranch, "branch", "", "default branch to store for this context")
	rootCmd.AddCommand(cmd)
}
