package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "vc",
	Short:         "Git-like version control for a MongoDB collection",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Run executes the CLI, returning the process exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().String("uri", "", "MongoDB connection URI (overrides the current context's)")
	rootCmd.PersistentFlags().String("database", "", "database name (overrides the current context's)")
	rootCmd.PersistentFlags().String("target", "", "target collection name (overrides the current context's)")
	rootCmd.PersistentFlags().String("context", "", "named context to use for this invocation, without switching the default")
	rootCmd.PersistentFlags().String("user", "", "MongoDB username (overrides VC_MONGO_USER)")
	rootCmd.PersistentFlags().String("password", "", "MongoDB password (overrides VC_MONGO_PASSWORD)")

	_ = viper.BindPFlag("mongo-user", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("mongo-password", rootCmd.PersistentFlags().Lookup("password"))
	_ = viper.BindEnv("mongo-user", "VC_MONGO_USER")
	_ = viper.BindEnv("mongo-password", "VC_MONGO_PASSWORD")
}
