package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mr-games",
	Short: "Browse and manage the MR GAMES catalog",
	Long: `mr-games is a terminal client for the MR GAMES catalog. It browses the
catalog, keeps favorites, manages the catalog from a password protected admin
tab and can run a local games store.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
