package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "keywatch",
	Short:         "keywatch — keyword match engine for chat messages",
	Long:          "Evaluates chat messages against per-user keyword rules and maintains the dedup/block stores.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(expireCmd)
}
