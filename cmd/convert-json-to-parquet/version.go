package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "convert-json-to-parquet %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
