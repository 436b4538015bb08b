package staircase_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/aretw0/hdt/pkg/staircase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() staircase.Config {
	return staircase.Config{
		Name:            "400_1",
		StartValue:      400,
		StepSize:        50,
		NUp:             2,
		NDown:           2,
		TargetReversals: 3,
		MaxTrials:       15,
		MinValue:        0,
		MaxValue:        1000,
	}
}

func newStaircase(t *testing.T, mutate ...func(*staircase.Config)) *staircase.Staircase {
	t.Helper()
	cfg := defaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := staircase.New(cfg)
	require.NoError(t, err)
	return s
}

func apply(t *testing.T, s *staircase.Staircase, sigs ...domain.Signal) {
	t.Helper()
	for _, sig := range sigs {
		require.NoError(t, s.ApplyResponse(sig))
	}
}

func TestStaircase_InitialState(t *testing.T) {
	s := newStaircase(t)

	v, err := s.NextValue()
	require.NoError(t, err)
	assert.Equal(t, 400.0, v)
	assert.Equal(t, staircase.DirectionNone, s.Direction())
	assert.Zero(t, s.Reversals())
	assert.Zero(t, s.TrialsRun())
	assert.False(t, s.Finished())
}

func TestStaircase_NextValueDoesNotAdvance(t *testing.T) {
	s := newStaircase(t)
	for range 5 {
		v, err := s.NextValue()
		require.NoError(t, err)
		assert.Equal(t, 400.0, v)
	}
}

func TestStaircase_UpThenDownCountsOneReversal(t *testing.T) {
	s := newStaircase(t)

	apply(t, s, domain.SignalIncrease, domain.SignalIncrease)
	v, _ := s.NextValue()
	assert.Equal(t, 450.0, v)
	assert.Equal(t, staircase.DirectionUp, s.Direction())
	assert.Zero(t, s.Reversals(), "first move is never a reversal")

	apply(t, s, domain.SignalDecrease, domain.SignalDecrease)
	v, _ = s.NextValue()
	assert.Equal(t, 400.0, v)
	assert.Equal(t, staircase.DirectionDown, s.Direction())
	assert.Equal(t, 1, s.Reversals())

	mean, ok := s.Threshold()
	require.True(t, ok)
	assert.Equal(t, 450.0, mean)
}

func TestStaircase_FirstMoveDownIsNotReversal(t *testing.T) {
	s := newStaircase(t)
	apply(t, s, domain.SignalDecrease, domain.SignalDecrease)

	v, _ := s.NextValue()
	assert.Equal(t, 350.0, v)
	assert.Zero(t, s.Reversals())

	_, ok := s.Threshold()
	assert.False(t, ok)
}

func TestStaircase_SameDirectionIsNotReversal(t *testing.T) {
	s := newStaircase(t)
	apply(t, s, domain.SignalIncrease, domain.SignalIncrease, domain.SignalIncrease, domain.SignalIncrease)

	v, _ := s.NextValue()
	assert.Equal(t, 500.0, v)
	assert.Zero(t, s.Reversals())
}

func TestStaircase_MixedSignalsResetCounters(t *testing.T) {
	s := newStaircase(t)
	apply(t, s, domain.SignalIncrease, domain.SignalDecrease, domain.SignalIncrease)

	snap := s.Snapshot()
	assert.Equal(t, 400.0, snap.Value, "no threshold reached")
	assert.Equal(t, 1, snap.ConsecutiveUp)
	assert.Zero(t, snap.ConsecutiveDown)
	assert.Equal(t, 3, snap.TrialsRun)
	assert.Equal(t, []domain.Signal{domain.SignalIncrease, domain.SignalDecrease, domain.SignalIncrease}, snap.Responses)
}

func TestStaircase_RepeatLeavesStateUnchanged(t *testing.T) {
	s := newStaircase(t)
	apply(t, s, domain.SignalIncrease, domain.SignalIncrease, domain.SignalDecrease)
	before := s.Snapshot()

	for range 10 {
		require.NoError(t, s.ApplyResponse(domain.SignalRepeat))
	}

	assert.Equal(t, before, s.Snapshot())
}

func TestStaircase_ClampsToBounds(t *testing.T) {
	s := newStaircase(t, func(c *staircase.Config) {
		c.StartValue = 980
		c.MaxTrials = 100
	})
	apply(t, s, domain.SignalIncrease, domain.SignalIncrease)
	v, _ := s.NextValue()
	assert.Equal(t, 1000.0, v)

	apply(t, s, domain.SignalIncrease, domain.SignalIncrease)
	v, _ = s.NextValue()
	assert.Equal(t, 1000.0, v)

	low := newStaircase(t, func(c *staircase.Config) {
		c.StartValue = 20
	})
	apply(t, low, domain.SignalDecrease, domain.SignalDecrease)
	v, _ = low.NextValue()
	assert.Equal(t, 0.0, v)
}

func TestStaircase_StaysInBoundsForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sigs := []domain.Signal{domain.SignalRepeat, domain.SignalIncrease, domain.SignalDecrease}

	for run := range 200 {
		s := newStaircase(t, func(c *staircase.Config) {
			c.StartValue = float64(rng.IntN(21) * 50)
			c.NUp = 1 + rng.IntN(3)
			c.NDown = 1 + rng.IntN(3)
			c.MaxTrials = 1 + rng.IntN(60)
			c.TargetReversals = 1 + rng.IntN(8)
		})
		for !s.Finished() {
			require.NoError(t, s.ApplyResponse(sigs[rng.IntN(len(sigs))]))
			snap := s.Snapshot()
			require.GreaterOrEqual(t, snap.Value, 0.0, "run %d", run)
			require.LessOrEqual(t, snap.Value, 1000.0, "run %d", run)
		}
	}
}

func TestStaircase_FinishesOnMaxTrials(t *testing.T) {
	s := newStaircase(t)
	count := 0
	for !s.Finished() {
		// Interleave repeats: they must not count.
		require.NoError(t, s.ApplyResponse(domain.SignalRepeat))
		require.NoError(t, s.ApplyResponse(domain.SignalIncrease))
		count++
	}

	assert.Equal(t, 15, count)
	assert.Equal(t, 15, s.TrialsRun())
	assert.Less(t, s.Reversals(), 3)
}

func TestStaircase_FinishesOnTargetReversals(t *testing.T) {
	s := newStaircase(t, func(c *staircase.Config) {
		c.NUp, c.NDown = 1, 1
		c.MaxTrials = 100
	})

	// up (first move), down (rev 1), up (rev 2), down (rev 3)
	apply(t, s, domain.SignalIncrease, domain.SignalDecrease, domain.SignalIncrease)
	assert.False(t, s.Finished())
	apply(t, s, domain.SignalDecrease)

	assert.True(t, s.Finished())
	assert.Equal(t, 3, s.Reversals())
	assert.Equal(t, 4, s.TrialsRun())
	assert.Equal(t, []float64{450, 400, 450}, s.Snapshot().ReversalValues)
}

func TestStaircase_FinishedIsSticky(t *testing.T) {
	s := newStaircase(t, func(c *staircase.Config) { c.MaxTrials = 1 })
	apply(t, s, domain.SignalIncrease)
	require.True(t, s.Finished())
	before := s.Snapshot()

	_, err := s.NextValue()
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	for _, sig := range []domain.Signal{domain.SignalIncrease, domain.SignalDecrease, domain.SignalRepeat} {
		err = s.ApplyResponse(sig)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	assert.True(t, s.Finished())
	assert.Equal(t, before, s.Snapshot())
}

func TestStaircase_RejectsUnknownSignal(t *testing.T) {
	s := newStaircase(t)
	before := s.Snapshot()

	assert.ErrorIs(t, s.ApplyResponse(domain.SignalUnknown), domain.ErrInvalidResponse)
	assert.ErrorIs(t, s.ApplyResponse(domain.Signal(9)), domain.ErrInvalidResponse)
	assert.Equal(t, before, s.Snapshot())
}

func TestStaircase_History(t *testing.T) {
	s := newStaircase(t)
	apply(t, s, domain.SignalIncrease, domain.SignalRepeat, domain.SignalIncrease, domain.SignalDecrease)

	assert.Equal(t, []staircase.Step{
		{Value: 400, Signal: domain.SignalIncrease},
		{Value: 400, Signal: domain.SignalIncrease},
		{Value: 450, Signal: domain.SignalDecrease},
	}, s.History())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())

	bad := staircase.Config{Name: "x", StartValue: 2000, MinValue: 0, MaxValue: 1000}
	err := bad.Validate()
	require.Error(t, err)
	for _, want := range []string{"step_size", "n_up", "n_down", "start_value", "max_trials", "target_reversals"} {
		assert.Contains(t, err.Error(), want)
	}

	_, err = staircase.New(bad)
	assert.Error(t, err)

	inverted := defaultConfig()
	inverted.MinValue, inverted.MaxValue = 1000, 0
	assert.ErrorContains(t, inverted.Validate(), "min_value")
}
