package cmd

import "github.com/spf13/cobra"

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the broker configuration",
}

func init() {
	rootCmd.AddCommand(configCmd)
}
