package ports

import (
	"context"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/staircase"
)

// TrialRunner presents a stimulus for a given delay (milliseconds) and
// returns the participant's judgement.
type TrialRunner interface {
	RunTrial(ctx context.Context, delay float64) (domain.Response, error)
}

// TrialRunnerFunc adapts a function to TrialRunner.
type TrialRunnerFunc func(ctx context.Context, delay float64) (domain.Response, error)

func (f TrialRunnerFunc) RunTrial(ctx context.Context, delay float64) (domain.Response, error) {
	return f(ctx, delay)
}

// Stimulator schedules a stimulus sequence at the given delay and blocks
// until the device reports that the sequence ended.
type Stimulator interface {
	Trigger(ctx context.Context, delayMs int) error
	Close() error
}

// RecordSink is an append-only store of trial records.
type RecordSink interface {
	Append(ctx context.Context, rec domain.TrialRecord) error
	Close() error
}

// Navigation is the participant's move on an instruction page.
type Navigation int

const (
	NavNext Navigation = iota
	NavPrevious
)

// Page is one screen of instructions.
type Page struct {
	ID      string
	Title   string
	Content string
}

// Question is a rating-scale item of the post-task questionnaire.
type Question struct {
	Label    string   `yaml:"label" json:"label" mapstructure:"label"`
	Question string   `yaml:"question" json:"question" mapstructure:"question"`
	Anchors  []string `yaml:"anchors" json:"anchors" mapstructure:"anchors"`
}

// Prompter is the interactive surface of a session.
// Every method blocks until an answer is available or ctx is done, and
// returns domain.ErrCancelled when the operator aborts from the prompt.
type Prompter interface {
	// ShowPage displays an instruction page and reports how to move on.
	ShowPage(ctx context.Context, page Page, first bool) (Navigation, error)

	// Choose asks the participant to pick one of options and returns its index.
	Choose(ctx context.Context, prompt string, options []string) (int, error)

	// Confidence asks for an integer rating between 0 and 100.
	Confidence(ctx context.Context, prompt string) (int, error)

	// Rate asks a questionnaire item on a 0 to 100 scale.
	Rate(ctx context.Context, q Question) (int, error)

	// WaitOperator blocks until the operator confirms with ENTER.
	WaitOperator(ctx context.Context, msg string) error

	// Notify shows a message without waiting.
	Notify(ctx context.Context, msg string) error

	// Countdown shows a seconds countdown.
	Countdown(ctx context.Context, seconds int) error
}

// PageLoader returns the instruction pages in presentation order.
type PageLoader interface {
	Pages(ctx context.Context) ([]Page, error)
}

// Status is a point-in-time view of a running session.
type Status struct {
	Participant string       `json:"participant"`
	Phase       domain.Phase `json:"phase"`
	// Staircase is the index of the active staircase, -1 outside the staircase phase.
	Staircase      int                  `json:"staircase"`
	Staircases     []staircase.Snapshot `json:"staircases"`
	RecordsWritten int                  `json:"records_written"`
	StartedAt      time.Time            `json:"started_at"`
}

// StatusProvider exposes the status of a session.
type StatusProvider interface {
	Status() Status
}
