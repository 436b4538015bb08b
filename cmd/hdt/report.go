package main

import (
	"github.com/aretw0/hdt/internal/cli"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [log.tsv]",
	Short: "Summarize a session log",
	Long: `Replays a session log through the configured staircases and prints the
trials, reversals and threshold of every staircase. With --sqlite and no
--session it lists the sessions stored for --participant.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.ReportOptions{Stdout: cmd.OutOrStdout()}
		if len(args) > 0 {
			opts.LogPath = args[0]
		}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.SQLite, _ = cmd.Flags().GetString("sqlite")
		opts.Participant, _ = cmd.Flags().GetString("participant")
		opts.Session, _ = cmd.Flags().GetString("session")
		opts.Mermaid, _ = cmd.Flags().GetBool("mermaid")

		return cli.Report(cmd.Context(), opts)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("sqlite", "", "Read records from this SQLite database")
	reportCmd.Flags().StringP("participant", "p", "", "Participant ID (with --sqlite)")
	reportCmd.Flags().String("session", "", "Session label (with --sqlite)")
	reportCmd.Flags().Bool("mermaid", false, "Append a Mermaid chart of every staircase")
}
