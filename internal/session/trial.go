package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/ports"
	"github.com/aretw0/hdt/pkg/runner"
)

// JudgementPrompt is the question asked after every stimulus sequence.
const JudgementPrompt = "Are the beeps ___ your heartbeat?"

// Timing holds the fixed waits of a trial.
type Timing struct {
	Cue           time.Duration
	Settle        time.Duration
	AfterResponse time.Duration
}

// DefaultTiming matches the lab protocol.
var DefaultTiming = Timing{
	Cue:           500 * time.Millisecond,
	Settle:        time.Second,
	AfterResponse: 2 * time.Second,
}

// HeartbeatTrial runs one heartbeat discrimination trial:
// cue, fixation, stimulus sequence on the device, then the judgement.
type HeartbeatTrial struct {
	Device   ports.Stimulator
	Prompter ports.Prompter
	Timing   Timing
	// Debug shows the delay with the cue.
	Debug  bool
	Sleep  runner.Sleeper
	Logger *slog.Logger
}

var _ ports.TrialRunner = (*HeartbeatTrial)(nil)

// NewHeartbeatTrial creates a trial runner with the default timing.
func NewHeartbeatTrial(device ports.Stimulator, prompter ports.Prompter) *HeartbeatTrial {
	return &HeartbeatTrial{
		Device:   device,
		Prompter: prompter,
		Timing:   DefaultTiming,
		Sleep:    runner.Sleep,
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func (t *HeartbeatTrial) RunTrial(ctx context.Context, delay float64) (domain.Response, error) {
	cue := "<3  Get ready"
	if t.Debug {
		cue = fmt.Sprintf("%s  (Value %s)", cue, domain.FormatDelay(delay))
	}
	if err := t.Prompter.Notify(ctx, cue); err != nil {
		return domain.Response{}, err
	}
	if err := t.Sleep(ctx, t.Timing.Cue); err != nil {
		return domain.Response{}, err
	}
	if err := t.Prompter.Notify(ctx, "+"); err != nil {
		return domain.Response{}, err
	}

	ms := int(math.Round(delay))
	t.Logger.Debug("Tones starting", "delay", ms)
	if err := t.Device.Trigger(ctx, ms); err != nil {
		return domain.Response{}, fmt.Errorf("stimulus at %dms: %w", ms, err)
	}
	t.Logger.Debug("Tones complete", "delay", ms)

	if err := t.Sleep(ctx, t.Timing.Settle); err != nil {
		return domain.Response{}, err
	}

	idx, err := t.Prompter.Choose(ctx, JudgementPrompt, domain.Buttons)
	if err != nil {
		return domain.Response{}, err
	}
	resp, err := domain.ResponseFromLabel(domain.Buttons[idx])
	if err != nil {
		return domain.Response{}, err
	}

	if err := t.Sleep(ctx, t.Timing.AfterResponse); err != nil {
		return domain.Response{}, err
	}
	return resp, nil
}
