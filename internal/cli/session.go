package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/hdt"
	"github.com/aretw0/hdt/internal/config"
	"github.com/aretw0/hdt/internal/presentation/tui"
	httpAdapter "github.com/aretw0/hdt/pkg/adapters/http"
	"github.com/aretw0/hdt/pkg/adapters/memory"
	"github.com/aretw0/hdt/pkg/metrics"
	"github.com/aretw0/hdt/pkg/runner"
	"golang.org/x/term"
)

// RunSession executes a single session of the task.
func RunSession(cfg config.Config, opts RunOptions) error {
	stdin, stdout, stderr := opts.Stdin, opts.Stdout, opts.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	logger, closeLog, err := createLogger(cfg, stderr)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeLog()

	interactive := isTerminal(stdout)
	if interactive {
		tui.PrintBanner(stdout, hdt.Version)
	}

	terminalOpts := []runner.TerminalOption{}
	if interactive {
		terminalOpts = append(terminalOpts, runner.WithRenderer(tui.NewRenderer()))
	}
	prompter := runner.NewTerminal(stdin, stdout, terminalOpts...)
	defer prompter.Close()

	collector := metrics.New()
	hooks := collector.Hooks()
	if cfg.Debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}
	var streams *httpAdapter.StreamManager
	if cfg.Monitor.Addr != "" {
		streams = httpAdapter.NewStreamManager()
		hooks = hooks.Merge(streams.Hooks())
	}

	records := memory.NewRecorder()
	exp, err := hdt.New(cfg,
		hdt.WithPrompter(prompter),
		hdt.WithLogger(logger),
		hdt.WithLifecycleHooks(hooks),
		hdt.WithMirrors(records),
	)
	if err != nil {
		return fmt.Errorf("error initializing session: %w", err)
	}
	printSystemMessage(stdout, "Participant %s, logging to %s", cfg.ParticipantID, exp.LogPath())
	if cfg.Device.Simulate {
		printSystemMessage(stdout, "Testing mode: no beeps will play.")
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if cfg.Monitor.Addr != "" {
		stopMonitor := startMonitor(exp, records, collector, streams, sigCtx.Cancel, cfg.Monitor.Addr, logger)
		defer stopMonitor()
		printSystemMessage(stdout, "Monitor on http://%s", cfg.Monitor.Addr)
	}

	res, runErr := exp.Run(sigCtx)

	// A signal cancels the context but the orchestrator reports that as a clean cancel.
	if sigCtx.Err() != nil && runErr == nil && !res.Cancelled {
		runErr = sigCtx.Err()
	}

	logCompletion(stdout, res, runErr, sigCtx.Signal())
	return handleExecutionError(runErr)
}

// startMonitor serves the session monitor in the background until the returned func is called.
func startMonitor(exp *hdt.Experiment, records *memory.Recorder, collector *metrics.Collector, streams *httpAdapter.StreamManager, cancel context.CancelFunc, addr string, logger *slog.Logger) func() {
	srv := httpAdapter.NewServer(exp,
		httpAdapter.WithRecords(records),
		httpAdapter.WithCancel(cancel),
		httpAdapter.WithMetrics(collector.Handler()),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithVersion(hdt.Version),
		httpAdapter.WithLogger(logger),
	)

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			logger.Error("Monitor stopped", "err", err)
		}
	}()
	return func() {
		stop()
		<-done
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
