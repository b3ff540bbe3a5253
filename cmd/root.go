package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autoindex",
	Short: "automatic index advisor",
	Long:  `autoindex recommends and maintains secondary indexes for a query workload using the optimizer's what-if costing.`,
}

func init() {
	rootCmd.AddCommand(newAdviseCmd())
	rootCmd.AddCommand(newTuneCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
