package domain

import (
	"context"
	"time"
)

// Phase identifies a stage of the session.
type Phase string

const (
	PhaseInstructions  Phase = "instructions"
	PhaseTraining      Phase = "training"
	PhaseStaircases    Phase = "staircases"
	PhaseQuestionnaire Phase = "questionnaire"
	PhaseComplete      Phase = "complete"
	PhaseCancelled     Phase = "cancelled"
)

// PhaseEvent is emitted when the session enters a phase.
type PhaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Phase     Phase     `json:"phase"`
}

// TrialEvent is emitted after every administered trial, repeats included.
type TrialEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Record    TrialRecord `json:"record"`
	Signal    Signal      `json:"signal"`
	// Repeat is true when the response was discarded from staircase logic.
	Repeat bool `json:"repeat"`
	// Value is the staircase value after the response was applied.
	Value float64 `json:"value"`
}

// ReversalEvent is emitted when a staircase changes direction.
type ReversalEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Staircase string    `json:"staircase"`
	Count     int       `json:"count"`
	Value     float64   `json:"value"`
}

// StaircaseEvent is emitted when a staircase finishes.
type StaircaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Staircase string    `json:"staircase"`
	TrialsRun int       `json:"trials_run"`
	Reversals int       `json:"reversals"`
	Threshold float64   `json:"threshold"`
	// HasThreshold is false when no reversal happened.
	HasThreshold bool `json:"has_threshold"`
}

// LifecycleHooks defines callbacks for session observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnPhase         func(context.Context, *PhaseEvent)
	OnTrial         func(context.Context, *TrialEvent)
	OnReversal      func(context.Context, *ReversalEvent)
	OnStaircaseDone func(context.Context, *StaircaseEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPhase:         chain(h.OnPhase, other.OnPhase),
		OnTrial:         chain(h.OnTrial, other.OnTrial),
		OnReversal:      chain(h.OnReversal, other.OnReversal),
		OnStaircaseDone: chain(h.OnStaircaseDone, other.OnStaircaseDone),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
