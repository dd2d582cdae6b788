package cmd

import "github.com/spf13/cobra"

// tokenCmd represents the token command group
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint and inspect viewer-scoped dashboard tokens",
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
