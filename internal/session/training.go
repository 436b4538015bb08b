package session

import (
	"fmt"
	"math/rand/v2"
)

// TrainingPlan describes the practice delays.
type TrainingPlan struct {
	// Values, when set, are used as-is.
	Values []float64
	// Otherwise Count picks are drawn with replacement from Min..Max in Step increments.
	Count int
	Min   float64
	Max   float64
	Step  float64
	// Seed makes the draw reproducible; zero draws from a random seed.
	Seed uint64
}

// DefaultTrainingPlan draws 20 delays from 0..600 in steps of 50.
var DefaultTrainingPlan = TrainingPlan{Count: 20, Min: 0, Max: 600, Step: 50}

// Delays resolves the plan into the practice delays.
func (p TrainingPlan) Delays() ([]float64, error) {
	if len(p.Values) > 0 {
		return append([]float64(nil), p.Values...), nil
	}
	if p.Count <= 0 {
		return nil, nil
	}
	if p.Step <= 0 || p.Max < p.Min {
		return nil, fmt.Errorf("invalid training range %v..%v step %v", p.Min, p.Max, p.Step)
	}

	var choices []float64
	for v := p.Min; v <= p.Max; v += p.Step {
		choices = append(choices, v)
	}

	seed := p.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]float64, p.Count)
	for i := range out {
		out[i] = choices[rng.IntN(len(choices))]
	}
	return out, nil
}
