/*
Package staircase implements the adaptive n-up/n-down staircase used to pick
stimulus delays.

A Staircase holds a bounded, linearly stepped value. Responses are fed one at a
time; after nUp consecutive increase signals the value goes up by one step,
after nDown consecutive decrease signals it goes down. Each change of direction
is a reversal. A staircase finishes when it has run maxTrials counted trials or
seen targetReversals reversals, whichever comes first. Repeat signals never
touch the state.

	s, err := staircase.New(staircase.Config{
		Name: "400_1", StartValue: 400, StepSize: 50,
		NUp: 2, NDown: 2, TargetReversals: 3, MaxTrials: 15,
		MinValue: 0, MaxValue: 1000,
	})
	for !s.Finished() {
		delay, _ := s.NextValue()
		sig := present(delay)
		if sig == domain.SignalRepeat {
			continue
		}
		_ = s.ApplyResponse(sig)
	}

The package is pure logic and not safe for concurrent use.
*/
package staircase
