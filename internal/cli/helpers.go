package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/aretw0/hdt/internal/config"
	"github.com/aretw0/hdt/internal/logging"
	"github.com/aretw0/hdt/internal/session"
	"github.com/aretw0/hdt/pkg/domain"
	"github.com/fatih/color"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// Without a log file, only debug sessions log, and they log to stderr so the
// participant prompts on stdout stay clean.
func createLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	level := logging.Level(cfg.Debug)

	if cfg.LogFile != "" {
		var console io.Writer
		if cfg.Debug {
			console = stderr
		}
		logger, closer, err := logging.NewFile(level, cfg.LogFile, console)
		if err != nil {
			return nil, noop, err
		}
		return logger, closer.Close, nil
	}
	if cfg.Debug {
		return logging.NewWriter(stderr, level), noop, nil
	}
	return logging.NewNop(), noop, nil
}

var systemColor = color.New(color.FgCyan)

// printSystemMessage prints a standardized operator message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	systemColor.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhase: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.Debug("Enter Phase", "phase", e.Phase)
		},
		OnTrial: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Trial Event", "block", e.Record.Block, "signal", e.Signal, "repeat", e.Repeat, "next", e.Value)
		},
		OnReversal: func(ctx context.Context, e *domain.ReversalEvent) {
			logger.Debug("Reversal", "staircase", e.Staircase, "count", e.Count, "value", e.Value)
		},
		OnStaircaseDone: func(ctx context.Context, e *domain.StaircaseEvent) {
			logger.Debug("Staircase Done", "staircase", e.Staircase, "trials", e.TrialsRun, "reversals", e.Reversals)
		},
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrCancelled) ||
		errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, res session.Result, err error, sig os.Signal) {
	switch {
	case err != nil && !isInterrupted(err):
		return
	case res.Cancelled || err != nil:
		if sig == os.Interrupt {
			fmt.Fprintf(w, "\n> [CTRL+C]\n")
		} else {
			fmt.Fprintln(w)
		}
		if sig != nil && sig != os.Interrupt {
			printSystemMessage(w, "Terminated after %d records.", res.Records)
		} else {
			printSystemMessage(w, "Interrupted after %d records.", res.Records)
		}
		return
	}

	printSystemMessage(w, "Session finished with %d records.", res.Records)
	names := make([]string, 0, len(res.Thresholds))
	for name := range res.Thresholds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printSystemMessage(w, "Staircase %s threshold: %.1f ms", name, res.Thresholds[name])
	}
}
