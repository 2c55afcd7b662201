package main

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the contexts stored in $HOME/.mongovc/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			if len(conf.Contexts) == 0 {
				cmd.Println("no contexts configured; run `vc use <name> --uri ... --database ... --target ...`")
				return nil
			}

			names := make([]string, 0, len(conf.Contexts))
			for name := range conf.Contexts {
				names = append(names, name)
			}
			sort.Strings(names)

			tw := newTableWriter()
			tw.AppendHeader(table.Row{"", "NAME", "URI", "DATABASE", "TARGET", "BRANCH"})
			for _, name := range names {
				c := conf.Contexts[name]
				marker := ""
				if name == conf.Current {
					marker = "*"
				}
				tw.AppendRow(table.Row{marker, name, c.URI, c.Database, c.Target, c.Branch})
			}
			cmd.Println(tw.Render())
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newConfigCmd())
}
