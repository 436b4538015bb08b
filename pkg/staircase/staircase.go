package staircase

import (
	"fmt"

	"github.com/aretw0/hdt/pkg/domain"
)

// Direction is the direction of the last value change.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// State is the life-cycle state of a staircase.
type State string

const (
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// Step is one applied (non-repeat) response.
type Step struct {
	Value  float64       `json:"value"`
	Signal domain.Signal `json:"signal"`
}

// Staircase is a single adaptive run.
type Staircase struct {
	cfg Config

	value           float64
	direction       Direction
	consecutiveUp   int
	consecutiveDown int
	reversals       int
	trialsRun       int
	reversalValues  []float64
	history         []Step
	state           State
}

// New creates a staircase in the running state at cfg.StartValue.
func New(cfg Config) (*Staircase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Staircase{
		cfg:   cfg,
		value: cfg.StartValue,
		state: StateRunning,
	}, nil
}

// Name returns the configured staircase name.
func (s *Staircase) Name() string { return s.cfg.Name }

// Config returns the configuration the staircase was built with.
func (s *Staircase) Config() Config { return s.cfg }

// Finished reports whether the staircase reached a termination criterion.
func (s *Staircase) Finished() bool { return s.state == StateFinished }

// NextValue returns the value to present next. It does not advance the staircase.
func (s *Staircase) NextValue() (float64, error) {
	if s.Finished() {
		return 0, fmt.Errorf("%w: staircase %q is finished", domain.ErrInvalidState, s.cfg.Name)
	}
	return s.value, nil
}

// ApplyResponse feeds one response signal to the staircase.
// Repeat signals are accepted and ignored.
func (s *Staircase) ApplyResponse(sig domain.Signal) error {
	if !sig.Valid() {
		return fmt.Errorf("%w: %s for staircase %q", domain.ErrInvalidResponse, sig, s.cfg.Name)
	}
	if s.Finished() {
		return fmt.Errorf("%w: staircase %q is finished", domain.ErrInvalidState, s.cfg.Name)
	}
	if sig == domain.SignalRepeat {
		return nil
	}

	s.trialsRun++
	s.history = append(s.history, Step{Value: s.value, Signal: sig})

	var crossed bool
	var next Direction
	switch sig {
	case domain.SignalIncrease:
		s.consecutiveUp++
		s.consecutiveDown = 0
		crossed, next = s.consecutiveUp >= s.cfg.NUp, DirectionUp
	case domain.SignalDecrease:
		s.consecutiveDown++
		s.consecutiveUp = 0
		crossed, next = s.consecutiveDown >= s.cfg.NDown, DirectionDown
	}

	if crossed {
		if s.direction != DirectionNone && s.direction != next {
			s.reversals++
			s.reversalValues = append(s.reversalValues, s.value)
		}
		s.direction = next
		if next == DirectionUp {
			s.value = s.clamp(s.value + s.cfg.StepSize)
		} else {
			s.value = s.clamp(s.value - s.cfg.StepSize)
		}
		s.consecutiveUp, s.consecutiveDown = 0, 0
	}

	if s.trialsRun >= s.cfg.MaxTrials || s.reversals >= s.cfg.TargetReversals {
		s.state = StateFinished
	}
	return nil
}

func (s *Staircase) clamp(v float64) float64 {
	return min(max(v, s.cfg.MinValue), s.cfg.MaxValue)
}

// Threshold estimates the perceptual threshold as the mean of the values at
// which reversals occurred. ok is false when there has been no reversal.
func (s *Staircase) Threshold() (mean float64, ok bool) {
	if len(s.reversalValues) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range s.reversalValues {
		sum += v
	}
	return sum / float64(len(s.reversalValues)), true
}

// Snapshot is a read-only copy of the staircase state.
type Snapshot struct {
	Name            string          `json:"name"`
	State           State           `json:"state"`
	Value           float64         `json:"value"`
	Direction       string          `json:"direction"`
	ConsecutiveUp   int             `json:"consecutive_up"`
	ConsecutiveDown int             `json:"consecutive_down"`
	Reversals       int             `json:"reversals"`
	TargetReversals int             `json:"target_reversals"`
	TrialsRun       int             `json:"trials_run"`
	MaxTrials       int             `json:"max_trials"`
	ReversalValues  []float64       `json:"reversal_values,omitempty"`
	Responses       []domain.Signal `json:"responses,omitempty"`
}

// Snapshot copies the current state.
func (s *Staircase) Snapshot() Snapshot {
	responses := make([]domain.Signal, len(s.history))
	for i, st := range s.history {
		responses[i] = st.Signal
	}
	return Snapshot{
		Name:            s.cfg.Name,
		State:           s.state,
		Value:           s.value,
		Direction:       s.direction.String(),
		ConsecutiveUp:   s.consecutiveUp,
		ConsecutiveDown: s.consecutiveDown,
		Reversals:       s.reversals,
		TargetReversals: s.cfg.TargetReversals,
		TrialsRun:       s.trialsRun,
		MaxTrials:       s.cfg.MaxTrials,
		ReversalValues:  append([]float64(nil), s.reversalValues...),
		Responses:       responses,
	}
}

// History returns the applied steps in order.
func (s *Staircase) History() []Step {
	return append([]Step(nil), s.history...)
}

// Direction returns the direction of the last value change.
func (s *Staircase) Direction() Direction { return s.direction }

// Reversals returns the number of reversals observed so far.
func (s *Staircase) Reversals() int { return s.reversals }

// TrialsRun returns the number of counted (non-repeat) trials.
func (s *Staircase) TrialsRun() int { return s.trialsRun }
