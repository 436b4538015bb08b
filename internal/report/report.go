// Package report replays a session log through the staircases that produced
// it and summarizes each run.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/staircase"
)

// ErrMismatch is returned when a log cannot have been produced by the given staircases.
var ErrMismatch = errors.New("log does not match staircase configuration")

// Summary describes one staircase block of a log.
type Summary struct {
	Name         string
	Administered int
	Repeats      int
	Counted      int
	Reversals    int
	Threshold    float64
	HasThreshold bool
	Finished     bool
	// Delays lists the administered delays, repeats included.
	Delays []float64
}

// Session is the summary of a whole log.
type Session struct {
	Participant string
	Training    int
	Staircases  []Summary
	Ratings     map[string]int
}

// Summarize replays records through fresh staircases built from cfgs.
// Staircases with no records are omitted.
func Summarize(participant string, records []domain.TrialRecord, cfgs []staircase.Config) (Session, error) {
	out := Session{Participant: participant, Ratings: map[string]int{}}

	byName := make(map[string][]domain.TrialRecord)
	for _, rec := range records {
		switch rec.Block {
		case domain.BlockTraining:
			out.Training++
		case domain.BlockPostTask:
			if rec.Confidence != nil {
				out.Ratings[rec.Trial] = *rec.Confidence
			}
		default:
			byName[rec.Block] = append(byName[rec.Block], rec)
		}
	}

	for _, cfg := range cfgs {
		recs, ok := byName[cfg.Name]
		if !ok {
			continue
		}
		delete(byName, cfg.Name)

		sum, err := replay(cfg, recs)
		if err != nil {
			return out, err
		}
		out.Staircases = append(out.Staircases, sum)
	}

	if len(byName) > 0 {
		unknown := make([]string, 0, len(byName))
		for name := range byName {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return out, fmt.Errorf("%w: unknown staircases %s", ErrMismatch, strings.Join(unknown, ", "))
	}
	return out, nil
}

func replay(cfg staircase.Config, recs []domain.TrialRecord) (Summary, error) {
	s, err := staircase.New(cfg)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Name: cfg.Name}

	for _, rec := range recs {
		if rec.Delay == nil || rec.Code == nil {
			return sum, fmt.Errorf("%w: %s trial %s has no delay or response", ErrMismatch, cfg.Name, rec.Trial)
		}
		want, err := s.NextValue()
		if err != nil {
			return sum, fmt.Errorf("%w: %s continues after it finished", ErrMismatch, cfg.Name)
		}
		if *rec.Delay != want {
			return sum, fmt.Errorf("%w: %s trial %s at %s, expected %s",
				ErrMismatch, cfg.Name, rec.Trial, domain.FormatDelay(*rec.Delay), domain.FormatDelay(want))
		}

		sum.Administered++
		sum.Delays = append(sum.Delays, *rec.Delay)

		sig, err := rec.Code.Signal()
		if err != nil {
			return sum, err
		}
		if sig == domain.SignalRepeat {
			sum.Repeats++
			continue
		}
		if err := s.ApplyResponse(sig); err != nil {
			return sum, err
		}
	}

	sum.Counted = s.TrialsRun()
	sum.Reversals = s.Reversals()
	sum.Threshold, sum.HasThreshold = s.Threshold()
	sum.Finished = s.Finished()
	return sum, nil
}

// Markdown renders the session summary as a markdown document.
func (s Session) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Participant %s\n\n", s.Participant)
	fmt.Fprintf(&sb, "Practice trials: %d\n\n", s.Training)

	if len(s.Staircases) > 0 {
		sb.WriteString("| Staircase | Trials | Repeats | Reversals | Threshold (ms) | Finished |\n")
		sb.WriteString("|---|---|---|---|---|---|\n")
		for _, st := range s.Staircases {
			threshold := domain.NotApplicable
			if st.HasThreshold {
				threshold = fmt.Sprintf("%.1f", st.Threshold)
			}
			fmt.Fprintf(&sb, "| %s | %d | %d | %d | %s | %t |\n",
				st.Name, st.Counted, st.Repeats, st.Reversals, threshold, st.Finished)
		}
		sb.WriteString("\n")
	}

	if len(s.Ratings) > 0 {
		labels := make([]string, 0, len(s.Ratings))
		for l := range s.Ratings {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		sb.WriteString("## Questionnaire\n\n")
		for _, l := range labels {
			fmt.Fprintf(&sb, "- %s: %d\n", l, s.Ratings[l])
		}
	}
	return sb.String()
}
