package main

import (
	"github.com/aretw0/hdt/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a session",
	Long:  `Runs instructions, practice, the staircases and the questionnaire for one participant.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.Toolkit, _ = cmd.Flags().GetBool("toolkit")
		opts.Participant, _ = cmd.Flags().GetString("participant")
		opts.OutDir, _ = cmd.Flags().GetString("out")
		opts.Port, _ = cmd.Flags().GetString("port")
		opts.Simulate, _ = cmd.Flags().GetBool("simulate")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.SQLite, _ = cmd.Flags().GetString("sqlite")
		opts.RedisURL, _ = cmd.Flags().GetString("redis-url")
		opts.Monitor, _ = cmd.Flags().GetString("monitor")
		opts.Instructions, _ = cmd.Flags().GetString("instructions")
		opts.Seed, _ = cmd.Flags().GetUint64("seed")

		return cli.Execute(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("participant", "p", "", "Participant ID")
	runCmd.Flags().StringP("out", "o", "", "Directory for the session log")
	runCmd.Flags().String("port", "", "Serial port of the recorder (e.g. COM2, /dev/ttyUSB0)")
	runCmd.Flags().Bool("simulate", false, "Run without a recorder; no beeps are played")
	runCmd.Flags().Bool("debug", false, "Show delays on screen and log debug output to stderr")
	runCmd.Flags().String("sqlite", "", "Also store records in this SQLite database")
	runCmd.Flags().String("redis-url", "", "Also publish records to Redis (redis://host:port/db)")
	runCmd.Flags().String("monitor", "", "Serve the session monitor on this address (e.g. :8080)")
	runCmd.Flags().String("instructions", "", "Directory of markdown instruction pages")
	runCmd.Flags().Uint64("seed", 0, "Seed for the practice delays (0 is random)")

	// 'hdt' alone starts a session
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
