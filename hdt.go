package hdt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/hdt/internal/config"
	"github.com/aretw0/hdt/internal/session"
	"github.com/aretw0/hdt/pkg/adapters/device"
	loamAdapter "github.com/aretw0/hdt/pkg/adapters/loam"
	"github.com/aretw0/hdt/pkg/adapters/multi"
	"github.com/aretw0/hdt/pkg/adapters/redis"
	"github.com/aretw0/hdt/pkg/adapters/sqlite"
	"github.com/aretw0/hdt/pkg/adapters/tsv"
	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/aretw0/hdt/pkg/runner"
)

// Config is the session configuration.
type Config = config.Config

// Result summarizes a finished or cancelled session.
type Result = session.Result

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Experiment is the high-level entry point for running one session.
// It wires the configured device, sinks and prompter into the session
// orchestrator; every collaborator may be replaced with an option.
type Experiment struct {
	cfg      Config
	prompter ports.Prompter
	device   ports.Stimulator
	sink     ports.RecordSink
	mirrors  []ports.RecordSink
	pages    ports.PageLoader
	hooks    domain.LifecycleHooks
	sleep    runner.Sleeper
	logger   *slog.Logger

	logPath       string
	closePrompter func() error
	orchestrator  *session.Orchestrator
}

// Option configures an Experiment.
type Option func(*Experiment)

// WithPrompter replaces the terminal prompter.
func WithPrompter(p ports.Prompter) Option {
	return func(e *Experiment) {
		e.prompter = p
	}
}

// WithDevice replaces the device built from the configuration.
func WithDevice(d ports.Stimulator) Option {
	return func(e *Experiment) {
		e.device = d
	}
}

// WithSink replaces the TSV log as the primary record sink.
func WithSink(s ports.RecordSink) Option {
	return func(e *Experiment) {
		e.sink = s
	}
}

// WithMirrors adds sinks that receive a copy of every record.
// Mirror failures are logged and never stop the session.
func WithMirrors(sinks ...ports.RecordSink) Option {
	return func(e *Experiment) {
		e.mirrors = append(e.mirrors, sinks...)
	}
}

// WithPages replaces the instruction pages source.
func WithPages(p ports.PageLoader) Option {
	return func(e *Experiment) {
		e.pages = p
	}
}

// WithLifecycleHooks registers observability hooks. It may be given several times.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Experiment) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithSleeper replaces the clock used for every pause.
func WithSleeper(s runner.Sleeper) Option {
	return func(e *Experiment) {
		e.sleep = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Experiment) {
		e.logger = logger
	}
}

// New validates cfg and opens every resource the session needs.
// Resources opened before a failure are closed again.
func New(cfg Config, opts ...Option) (_ *Experiment, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.sleep == nil {
		e.sleep = runner.Sleep
	}
	if e.prompter == nil {
		term := runner.NewTerminal(nil, nil)
		e.prompter = term
		e.closePrompter = term.Close
	}

	// A log created here is removed again on failure so the next attempt
	// keeps the participant's unsuffixed file name.
	var (
		opened     []interface{ Close() error }
		createdLog string
	)
	defer func() {
		if err != nil {
			for _, c := range opened {
				_ = c.Close()
			}
			if createdLog != "" {
				_ = os.Remove(createdLog)
			}
		}
	}()

	if e.pages == nil {
		if cfg.InstructionsDir != "" {
			loader, err := loamAdapter.Open(cfg.InstructionsDir)
			if err != nil {
				return nil, fmt.Errorf("instructions: %w", err)
			}
			e.pages = loader
		} else {
			e.pages = session.StaticPages(session.DefaultPages)
		}
	}

	delays, err := session.TrainingPlan{
		Values: cfg.Training.Values,
		Count:  cfg.Training.Count,
		Min:    cfg.Training.Min,
		Max:    cfg.Training.Max,
		Step:   cfg.Training.Step,
		Seed:   cfg.Training.Seed,
	}.Delays()
	if err != nil {
		return nil, err
	}

	if e.device == nil {
		dev, err := OpenDevice(cfg.Device, e.logger)
		if err != nil {
			return nil, err
		}
		opened = append(opened, dev)
		e.device = dev
	}

	if e.sink == nil {
		file, err := tsv.Create(cfg.OutputDir, cfg.ParticipantID)
		if err != nil {
			return nil, err
		}
		opened = append(opened, file)
		createdLog = file.Path()
		e.sink = file
		e.logPath = file.Path()
	}

	label := e.sessionLabel()
	if cfg.SQLitePath != "" {
		db, err := sqlite.Open(cfg.SQLitePath, cfg.ParticipantID, label)
		if err != nil {
			return nil, err
		}
		opened = append(opened, db)
		e.mirrors = append(e.mirrors, db)
	}
	if cfg.Redis.URL != "" {
		rs, err := redis.New(cfg.Redis.URL, cfg.ParticipantID, label, redis.WithPrefix(cfg.Redis.Prefix))
		if err != nil {
			return nil, err
		}
		opened = append(opened, rs)
		e.mirrors = append(e.mirrors, rs)
	}

	sink := e.sink
	if len(e.mirrors) > 0 {
		sink = multi.New(e.sink, e.mirrors...).WithLogger(e.logger)
	}

	trial := session.NewHeartbeatTrial(e.device, e.prompter)
	trial.Timing = session.Timing{
		Cue:           cfg.Timing.Cue,
		Settle:        cfg.Timing.Settle,
		AfterResponse: cfg.Timing.AfterResponse,
	}
	trial.Debug = cfg.Debug
	trial.Sleep = e.sleep
	trial.Logger = e.logger

	e.orchestrator = session.New(cfg.ParticipantID, trial, e.prompter, sink,
		session.WithStaircases(cfg.Staircases...),
		session.WithTrainingDelays(delays),
		session.WithQuestions(cfg.Questionnaire...),
		session.WithPages(e.pages),
		session.WithDevice(e.device),
		session.WithCountdown(cfg.Timing.Countdown),
		session.WithSleeper(e.sleep),
		session.WithHooks(e.hooks),
		session.WithLogger(e.logger),
	)
	return e, nil
}

// OpenDevice connects to the recorder described by cfg, or returns a
// simulated device when cfg.Simulate is set.
func OpenDevice(cfg config.DeviceConfig, logger *slog.Logger) (ports.Stimulator, error) {
	if cfg.Simulate {
		return device.NewSimulated(cfg.SimulateWait, logger), nil
	}
	dev, err := device.Open(cfg.Port, cfg.Baud, cfg.ReadTimeout,
		device.WithPollInterval(cfg.PollInterval),
		device.WithMaxWait(cfg.MaxWait),
		device.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", cfg.Port, err)
	}
	return dev, nil
}

// sessionLabel names this session in the mirror sinks. It follows the TSV
// file name so both stores can be matched; injected sinks get a timestamp.
func (e *Experiment) sessionLabel() string {
	if e.logPath != "" {
		return strings.TrimSuffix(filepath.Base(e.logPath), tsv.Extension)
	}
	return time.Now().UTC().Format("20060102T150405")
}

// Run executes the session. The sinks and the device are closed on return.
func (e *Experiment) Run(ctx context.Context) (Result, error) {
	if e.orchestrator == nil {
		return Result{}, errors.New("experiment not initialized")
	}
	if e.closePrompter != nil {
		defer e.closePrompter()
	}
	e.logger.Info("Session starting", "participant", e.cfg.ParticipantID, "log", e.logPath)
	return e.orchestrator.Run(ctx)
}

// Status reports the live progress of the session.
func (e *Experiment) Status() ports.Status {
	return e.orchestrator.Status()
}

// LogPath returns the TSV file the session writes to, or "" when the
// primary sink was injected.
func (e *Experiment) LogPath() string {
	return e.logPath
}

// Config returns the configuration the experiment was built from.
func (e *Experiment) Config() Config {
	return e.cfg
}
