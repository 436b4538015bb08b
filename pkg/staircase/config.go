package staircase

import (
	"errors"
	"fmt"
)

// Config is the immutable configuration of one staircase.
type Config struct {
	Name            string  `yaml:"name" json:"name" mapstructure:"name"`
	StartValue      float64 `yaml:"start_value" json:"start_value" mapstructure:"start_value"`
	StepSize        float64 `yaml:"step_size" json:"step_size" mapstructure:"step_size"`
	NUp             int     `yaml:"n_up" json:"n_up" mapstructure:"n_up"`
	NDown           int     `yaml:"n_down" json:"n_down" mapstructure:"n_down"`
	TargetReversals int     `yaml:"target_reversals" json:"target_reversals" mapstructure:"target_reversals"`
	MaxTrials       int     `yaml:"max_trials" json:"max_trials" mapstructure:"max_trials"`
	MinValue        float64 `yaml:"min_value" json:"min_value" mapstructure:"min_value"`
	MaxValue        float64 `yaml:"max_value" json:"max_value" mapstructure:"max_value"`
}

// Validate checks the configuration and reports every problem found.
func (c Config) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.StepSize <= 0 {
		errs = append(errs, fmt.Errorf("step_size must be positive, got %v", c.StepSize))
	}
	if c.NUp < 1 {
		errs = append(errs, fmt.Errorf("n_up must be at least 1, got %d", c.NUp))
	}
	if c.NDown < 1 {
		errs = append(errs, fmt.Errorf("n_down must be at least 1, got %d", c.NDown))
	}
	if c.MinValue > c.MaxValue {
		errs = append(errs, fmt.Errorf("min_value %v is above max_value %v", c.MinValue, c.MaxValue))
	} else if c.StartValue < c.MinValue || c.StartValue > c.MaxValue {
		errs = append(errs, fmt.Errorf("start_value %v is outside [%v, %v]", c.StartValue, c.MinValue, c.MaxValue))
	}
	if c.MaxTrials < 1 {
		errs = append(errs, fmt.Errorf("max_trials must be at least 1, got %d", c.MaxTrials))
	}
	if c.TargetReversals < 1 {
		errs = append(errs, fmt.Errorf("target_reversals must be at least 1, got %d", c.TargetReversals))
	}
	if err := errors.Join(errs...); err != nil {
		if c.Name != "" {
			return fmt.Errorf("staircase %q: %w", c.Name, err)
		}
		return err
	}
	return nil
}
