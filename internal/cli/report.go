package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/hdt/internal/config"
	"github.com/aretw0/hdt/internal/presentation/graph"
	"github.com/aretw0/hdt/internal/presentation/tui"
	"github.com/aretw0/hdt/internal/report"
	"github.com/aretw0/hdt/pkg/adapters/sqlite"
	"github.com/aretw0/hdt/pkg/adapters/tsv"
	"github.com/aretw0/hdt/pkg/domain"
)

// ReportOptions selects the log to summarize.
// Either LogPath or SQLite (with Participant) must be set.
type ReportOptions struct {
	LogPath     string
	ConfigPath  string
	SQLite      string
	Participant string
	Session     string
	Mermaid     bool
	Stdout      io.Writer
}

// Report replays a session log and prints its summary. With SQLite and no
// Session it lists the participant's sessions instead.
func Report(ctx context.Context, opts ReportOptions) error {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return err
		}
	}

	var (
		participant string
		records     []domain.TrialRecord
		err         error
	)
	switch {
	case opts.SQLite != "":
		if opts.Participant == "" {
			return errors.New("--participant is required with --sqlite")
		}
		db, err := sqlite.Open(opts.SQLite, opts.Participant, opts.Session)
		if err != nil {
			return err
		}
		defer db.Close()

		if opts.Session == "" {
			sessions, err := db.Sessions(ctx, opts.Participant)
			if err != nil {
				return err
			}
			for _, s := range sessions {
				fmt.Fprintln(out, s)
			}
			return nil
		}
		participant = opts.Participant
		if records, err = db.Records(ctx); err != nil {
			return err
		}
	case opts.LogPath != "":
		if participant, records, err = tsv.ReadFile(opts.LogPath); err != nil {
			return err
		}
	default:
		return errors.New("a log file or --sqlite is required")
	}

	sess, err := report.Summarize(participant, records, cfg.Staircases)
	if err != nil {
		return err
	}

	md := sess.Markdown()
	if isTerminal(out) {
		if rendered, err := tui.NewRenderer()(md); err == nil {
			md = rendered
		}
	}
	fmt.Fprint(out, md)

	if opts.Mermaid {
		fmt.Fprintln(out)
		fmt.Fprint(out, graph.GenerateMermaid(sess.Staircases, staircaseBounds(cfg)))
	}
	return nil
}

// staircaseBounds spans the value range of every configured staircase.
func staircaseBounds(cfg config.Config) *graph.Bounds {
	if len(cfg.Staircases) == 0 {
		return nil
	}
	b := graph.Bounds{Min: cfg.Staircases[0].MinValue, Max: cfg.Staircases[0].MaxValue}
	for _, s := range cfg.Staircases[1:] {
		b.Min, b.Max = min(b.Min, s.MinValue), max(b.Max, s.MaxValue)
	}
	return &b
}
