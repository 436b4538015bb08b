package main

import (
	"fmt"

	"github.com/aretw0/hdt"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hdt",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hdt version %s\n", hdt.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
