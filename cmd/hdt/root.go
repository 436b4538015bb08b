package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hdt",
	Short: "HDT runs the Heartbeat Discrimination Task",
	Long: `HDT presents the heartbeat discrimination task in the terminal, drives the
physiological recorder over a serial line and logs every trial.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Session configuration file (YAML)")
	rootCmd.PersistentFlags().Bool("toolkit", false, "Read --config as a lab toolkit participant file")
}
