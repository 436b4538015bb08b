package device

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// DefaultSimulatedWait is how long a simulated stimulus sequence lasts.
const DefaultSimulatedWait = 2 * time.Second

// Simulated replaces the recorder with a fixed wait. No beeps are played.
type Simulated struct {
	Wait   time.Duration
	Logger *slog.Logger
}

// NewSimulated creates a simulated device. A negative wait uses
// DefaultSimulatedWait and zero returns immediately.
func NewSimulated(wait time.Duration, logger *slog.Logger) *Simulated {
	if wait < 0 {
		wait = DefaultSimulatedWait
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Simulated{Wait: wait, Logger: logger}
}

func (s *Simulated) Trigger(ctx context.Context, delayMs int) error {
	s.Logger.Debug("Testing mode on: no beeps will play", "delay_ms", delayMs)
	if s.Wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Simulated) Close() error { return nil }
