package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	// Browse when no subcommand is provided.
	rootCmd.Run = func(_ *cobra.Command, _ []string) {
		runBrowse()
	}
}
