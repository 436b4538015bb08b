package main

import (
	"fmt"

	"github.com/aretw0/hdt/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config]",
	Short: "Check a configuration file",
	Long:  `Loads the configuration on top of the defaults and reports every problem found.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			path = args[0]
		}
		toolkit, _ := cmd.Flags().GetBool("toolkit")

		cfg, err := cli.ValidateConfig(path, toolkit)
		if err != nil {
			return fmt.Errorf("validation failed:\n%w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: participant %s, %d staircases ✅\n",
			cfg.ParticipantID, len(cfg.Staircases))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
