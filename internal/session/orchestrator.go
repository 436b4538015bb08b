// Package session runs a heartbeat discrimination session: instructions,
// practice trials, the staircases and the post-task questionnaire.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/aretw0/hdt/pkg/runner"
	"github.com/aretw0/hdt/pkg/staircase"
)

// Operator and participant messages.
const (
	MsgBeginPractice = "RESEARCHER:\nPress ENTER when you are ready to begin practice"
	MsgBeginTask     = "RESEARCHER:\nPress ENTER when you are ready to begin task."
	MsgContinue      = "Press ENTER when you are ready to continue"
	MsgContinuing    = "Continuing"
	MsgTaskComplete  = "Task complete"
	ConfidencePrompt = "How confident are you from 0 (Guess) to 100 (Certain)?"
	AnotherPrompt    = "Would you like to hear another practice trial?"
	OptionAgain      = "again"
	OptionStop       = "stop"
)

// DefaultCountdown is the countdown length in seconds.
const DefaultCountdown = 3

const defaultContinuing = time.Second

// Result summarizes a finished or cancelled session.
type Result struct {
	Cancelled  bool
	Records    int
	Staircases []staircase.Snapshot
	// Thresholds holds the mean reversal value of every staircase with at least one reversal.
	Thresholds map[string]float64
}

// Orchestrator drives the session phases in order.
type Orchestrator struct {
	participant string
	runner      ports.TrialRunner
	prompter    ports.Prompter
	sink        ports.RecordSink
	device      io.Closer
	pages       ports.PageLoader
	configs     []staircase.Config
	training    []float64
	questions   []ports.Question
	countdown   int
	continuing  time.Duration
	sleep       runner.Sleeper
	hooks       domain.LifecycleHooks
	logger      *slog.Logger

	mu        sync.RWMutex
	phase     domain.Phase
	current   int
	stairs    []*staircase.Staircase
	records   int
	startedAt time.Time
}

var _ ports.StatusProvider = (*Orchestrator)(nil)

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithStaircases sets the staircases run in order.
func WithStaircases(cfgs ...staircase.Config) Option {
	return func(o *Orchestrator) { o.configs = cfgs }
}

// WithTrainingDelays sets the practice delays. Empty skips practice.
func WithTrainingDelays(delays []float64) Option {
	return func(o *Orchestrator) { o.training = delays }
}

// WithQuestions sets the post-task questionnaire.
func WithQuestions(qs ...ports.Question) Option {
	return func(o *Orchestrator) { o.questions = qs }
}

// WithPages sets the instruction pages source. Nil skips the pages.
func WithPages(loader ports.PageLoader) Option {
	return func(o *Orchestrator) { o.pages = loader }
}

// WithDevice registers the stimulus device to close when the session ends.
func WithDevice(device io.Closer) Option {
	return func(o *Orchestrator) { o.device = device }
}

// WithCountdown sets the countdown length in seconds.
func WithCountdown(seconds int) Option {
	return func(o *Orchestrator) { o.countdown = seconds }
}

// WithSleeper replaces the clock used for pauses.
func WithSleeper(s runner.Sleeper) Option {
	return func(o *Orchestrator) { o.sleep = s }
}

// WithHooks adds lifecycle hooks. It may be given several times.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) { o.hooks = o.hooks.Merge(h) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator. The sink and the device are closed when Run returns.
func New(participant string, trials ports.TrialRunner, prompter ports.Prompter, sink ports.RecordSink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		participant: participant,
		runner:      trials,
		prompter:    prompter,
		sink:        sink,
		pages:       StaticPages(DefaultPages),
		countdown:   DefaultCountdown,
		continuing:  defaultContinuing,
		sleep:       runner.Sleep,
		logger:      slog.New(slog.DiscardHandler),
		current:     -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the session. Cancellation through ctx or an operator abort
// yields a Result with Cancelled set and a nil error.
func (o *Orchestrator) Run(ctx context.Context) (res Result, err error) {
	defer func() {
		if cerr := o.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	stairs := make([]*staircase.Staircase, 0, len(o.configs))
	for _, cfg := range o.configs {
		s, err := staircase.New(cfg)
		if err != nil {
			return Result{}, err
		}
		stairs = append(stairs, s)
	}

	o.mu.Lock()
	o.stairs = stairs
	o.startedAt = time.Now()
	o.mu.Unlock()

	phases := []struct {
		phase domain.Phase
		run   func(context.Context) error
	}{
		{domain.PhaseInstructions, o.runInstructions},
		{domain.PhaseTraining, o.runTraining},
		{domain.PhaseStaircases, o.runStaircases},
		{domain.PhaseQuestionnaire, o.runQuestionnaire},
		{domain.PhaseComplete, o.runComplete},
	}

	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return o.cancelled(ctx), nil
		}
		o.enter(ctx, p.phase)
		if err := p.run(ctx); err != nil {
			if o.isCancel(ctx, err) {
				return o.cancelled(ctx), nil
			}
			return o.result(), fmt.Errorf("%s phase: %w", p.phase, err)
		}
	}
	return o.result(), nil
}

func (o *Orchestrator) isCancel(ctx context.Context, err error) bool {
	return errors.Is(err, domain.ErrCancelled) || ctx.Err() != nil
}

func (o *Orchestrator) cancelled(ctx context.Context) Result {
	o.logger.Warn("Session cancelled", "participant", o.participant)
	// ctx may be done, hooks still need one
	o.enter(context.WithoutCancel(ctx), domain.PhaseCancelled)
	res := o.result()
	res.Cancelled = true
	return res
}

func (o *Orchestrator) close() error {
	var errs []error
	if err := o.sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close sink: %w", err))
	}
	if o.device != nil {
		if err := o.device.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close device: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) enter(ctx context.Context, phase domain.Phase) {
	o.mu.Lock()
	o.phase = phase
	if phase != domain.PhaseStaircases {
		o.current = -1
	}
	o.mu.Unlock()

	o.logger.Info("Phase", "phase", phase)
	if o.hooks.OnPhase != nil {
		o.hooks.OnPhase(ctx, &domain.PhaseEvent{Timestamp: time.Now(), Phase: phase})
	}
}

func (o *Orchestrator) runInstructions(ctx context.Context) error {
	if o.pages != nil {
		pages, err := o.pages.Pages(ctx)
		if err != nil {
			return fmt.Errorf("failed to load instructions: %w", err)
		}
		for i := 0; i < len(pages); {
			nav, err := o.prompter.ShowPage(ctx, pages[i], i == 0)
			if err != nil {
				return err
			}
			if nav == ports.NavPrevious && i > 0 {
				i--
				continue
			}
			i++
		}
	}

	if len(o.training) == 0 {
		return nil
	}
	if err := o.prompter.WaitOperator(ctx, MsgBeginPractice); err != nil {
		return err
	}
	return o.prompter.Countdown(ctx, o.countdown)
}

func (o *Orchestrator) runTraining(ctx context.Context) error {
	for i, delay := range o.training {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := o.runner.RunTrial(ctx, delay)
		if err != nil {
			return err
		}
		conf, err := o.prompter.Confidence(ctx, ConfidencePrompt)
		if err != nil {
			return err
		}
		sig, err := resp.Signal()
		if err != nil {
			return err
		}

		rec := domain.NewTrialRecord(domain.BlockTraining, i+1, delay, resp, conf)
		if err := o.write(ctx, rec, sig, false, delay); err != nil {
			return err
		}

		if i > 0 {
			choice, err := o.prompter.Choose(ctx, AnotherPrompt, []string{OptionAgain, OptionStop})
			if err != nil {
				return err
			}
			if choice == 1 {
				o.logger.Info("Participant chose to stop training")
				break
			}
		}
	}
	return nil
}

func (o *Orchestrator) runStaircases(ctx context.Context) error {
	if len(o.stairs) == 0 {
		return nil
	}
	if err := o.prompter.WaitOperator(ctx, MsgBeginTask); err != nil {
		return err
	}
	if err := o.prompter.Countdown(ctx, o.countdown); err != nil {
		return err
	}

	for idx, s := range o.stairs {
		o.mu.Lock()
		o.current = idx
		o.mu.Unlock()

		if err := o.runStaircase(ctx, s); err != nil {
			return err
		}

		if idx < len(o.stairs)-1 {
			if err := o.prompter.WaitOperator(ctx, MsgContinue); err != nil {
				return err
			}
			if err := o.prompter.Notify(ctx, MsgContinuing); err != nil {
				return err
			}
			if err := o.sleep(ctx, o.continuing); err != nil {
				return err
			}
			if err := o.prompter.Countdown(ctx, o.countdown); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *Orchestrator) runStaircase(ctx context.Context, s *staircase.Staircase) error {
	name := s.Name()
	o.logger.Info("Staircase started", "staircase", name)

	for administered := 1; ; administered++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Finished() {
			break
		}

		value, err := s.NextValue()
		if err != nil {
			return fmt.Errorf("staircase %q: %w", name, err)
		}

		resp, err := o.runner.RunTrial(ctx, value)
		if err != nil {
			return err
		}
		sig, err := resp.Signal()
		if err != nil {
			return fmt.Errorf("staircase %q: %w", name, err)
		}

		repeat := sig == domain.SignalRepeat
		if !repeat {
			o.mu.Lock()
			before := s.Reversals()
			err = s.ApplyResponse(sig)
			reversed := s.Reversals() > before
			snap := s.Snapshot()
			o.mu.Unlock()
			if err != nil {
				return fmt.Errorf("staircase %q: %w", name, err)
			}
			if reversed {
				o.reversal(ctx, name, snap)
			}
		} else {
			o.logger.Debug("Same time response, repeating trial", "staircase", name, "delay", value)
		}

		conf, err := o.prompter.Confidence(ctx, ConfidencePrompt)
		if err != nil {
			return err
		}

		rec := domain.NewTrialRecord(name, administered, value, resp, conf)
		if err := o.write(ctx, rec, sig, repeat, s.Snapshot().Value); err != nil {
			return err
		}
	}

	threshold, ok := s.Threshold()
	o.logger.Info("Staircase finished",
		"staircase", name,
		"trials", s.TrialsRun(),
		"reversals", s.Reversals(),
		"threshold", threshold,
	)
	if o.hooks.OnStaircaseDone != nil {
		o.hooks.OnStaircaseDone(ctx, &domain.StaircaseEvent{
			Timestamp:    time.Now(),
			Staircase:    name,
			TrialsRun:    s.TrialsRun(),
			Reversals:    s.Reversals(),
			Threshold:    threshold,
			HasThreshold: ok,
		})
	}
	return nil
}

func (o *Orchestrator) reversal(ctx context.Context, name string, snap staircase.Snapshot) {
	value := snap.ReversalValues[len(snap.ReversalValues)-1]
	o.logger.Debug("Reversal", "staircase", name, "count", snap.Reversals, "value", value)
	if o.hooks.OnReversal != nil {
		o.hooks.OnReversal(ctx, &domain.ReversalEvent{
			Timestamp: time.Now(),
			Staircase: name,
			Count:     snap.Reversals,
			Value:     value,
		})
	}
}

func (o *Orchestrator) runQuestionnaire(ctx context.Context) error {
	for _, q := range o.questions {
		rating, err := o.prompter.Rate(ctx, q)
		if err != nil {
			return err
		}
		rec := domain.NewQuestionRecord(q.Label, rating)
		if err := o.write(ctx, rec, domain.SignalUnknown, false, 0); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runComplete(ctx context.Context) error {
	return o.prompter.Notify(ctx, MsgTaskComplete)
}

func (o *Orchestrator) write(ctx context.Context, rec domain.TrialRecord, sig domain.Signal, repeat bool, value float64) error {
	if err := o.sink.Append(ctx, rec); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	o.mu.Lock()
	o.records++
	o.mu.Unlock()

	row := rec.Row()
	o.logger.Info("Trial",
		"block", row[0],
		"trial", row[1],
		"delay", row[2],
		"button", row[3],
		"code", row[4],
		"confidence", row[5],
	)

	if o.hooks.OnTrial != nil {
		o.hooks.OnTrial(ctx, &domain.TrialEvent{
			Timestamp: rec.Timestamp,
			Record:    rec,
			Signal:    sig,
			Repeat:    repeat,
			Value:     value,
		})
	}
	return nil
}

func (o *Orchestrator) result() Result {
	o.mu.RLock()
	defer o.mu.RUnlock()

	res := Result{
		Records:    o.records,
		Staircases: make([]staircase.Snapshot, len(o.stairs)),
		Thresholds: make(map[string]float64),
	}
	for i, s := range o.stairs {
		res.Staircases[i] = s.Snapshot()
		if t, ok := s.Threshold(); ok {
			res.Thresholds[s.Name()] = t
		}
	}
	return res
}

// Status returns a snapshot of the session progress. Safe for concurrent use.
func (o *Orchestrator) Status() ports.Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	st := ports.Status{
		Participant:    o.participant,
		Phase:          o.phase,
		Staircase:      o.current,
		Staircases:     make([]staircase.Snapshot, len(o.stairs)),
		RecordsWritten: o.records,
		StartedAt:      o.startedAt,
	}
	for i, s := range o.stairs {
		st.Staircases[i] = s.Snapshot()
	}
	return st
}
