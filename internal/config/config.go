// Package config loads and validates session configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/hdt/pkg/ports"
	"github.com/aretw0/hdt/pkg/staircase"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Config is the full session configuration.
type Config struct {
	ParticipantID   string             `mapstructure:"participant_id"`
	OutputDir       string             `mapstructure:"output_dir"`
	Debug           bool               `mapstructure:"debug"`
	Device          DeviceConfig       `mapstructure:"device"`
	Timing          TimingConfig       `mapstructure:"timing"`
	Training        TrainingConfig     `mapstructure:"training"`
	Staircases      []staircase.Config `mapstructure:"staircases"`
	Questionnaire   []ports.Question   `mapstructure:"questionnaire"`
	InstructionsDir string             `mapstructure:"instructions_dir"`
	SQLitePath      string             `mapstructure:"sqlite_path"`
	Redis           RedisConfig        `mapstructure:"redis"`
	Monitor         MonitorConfig      `mapstructure:"monitor"`
	LogFile         string             `mapstructure:"log_file"`
}

// DeviceConfig describes the serial link to the physiological recorder.
type DeviceConfig struct {
	Port         string        `mapstructure:"port"`
	Baud         int           `mapstructure:"baud"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`
	Simulate     bool          `mapstructure:"simulate"`
	SimulateWait time.Duration `mapstructure:"simulate_wait"`
}

type TimingConfig struct {
	Cue           time.Duration `mapstructure:"cue"`
	Settle        time.Duration `mapstructure:"settle"`
	AfterResponse time.Duration `mapstructure:"after_response"`
	Countdown     int           `mapstructure:"countdown"`
}

type TrainingConfig struct {
	Count  int       `mapstructure:"count"`
	Min    float64   `mapstructure:"min"`
	Max    float64   `mapstructure:"max"`
	Step   float64   `mapstructure:"step"`
	Values []float64 `mapstructure:"values"`
	Seed   uint64    `mapstructure:"seed"`
}

type RedisConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix"`
}

type MonitorConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultYAML returns the commented default configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Default returns the configuration of the standard lab session.
func Default() Config {
	var cfg Config
	if err := decodeYAML(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value; lists replace the default list.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := decodeYAML(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadToolkit reads the participant file shared by the lab toolkit
// ("Participant ID" and "Behavioural Directory") on top of the defaults.
func LoadToolkit(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read toolkit config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("failed to parse toolkit config: %w", err)
	}

	cfg := Default()
	if v, ok := raw["Participant ID"]; ok && v != nil {
		cfg.ParticipantID = fmt.Sprint(v)
	}
	if v, ok := raw["Behavioural Directory"]; ok && v != nil {
		cfg.OutputDir = fmt.Sprint(v)
	}
	return cfg, nil
}

func decodeYAML(data []byte, out *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate reports every problem of the configuration at once.
func (c Config) Validate() error {
	var errs []error
	if c.ParticipantID == "" {
		errs = append(errs, errors.New("participant_id is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if !c.Device.Simulate {
		if c.Device.Port == "" {
			errs = append(errs, errors.New("device.port is required unless device.simulate is set"))
		}
		if c.Device.Baud <= 0 {
			errs = append(errs, fmt.Errorf("device.baud must be positive, got %d", c.Device.Baud))
		}
	}
	if c.Device.MaxWait < 0 {
		errs = append(errs, errors.New("device.max_wait must not be negative"))
	}
	if c.Timing.Countdown < 0 {
		errs = append(errs, errors.New("timing.countdown must not be negative"))
	}
	if len(c.Training.Values) == 0 && c.Training.Count > 0 {
		if c.Training.Step <= 0 {
			errs = append(errs, errors.New("training.step must be positive"))
		}
		if c.Training.Max < c.Training.Min {
			errs = append(errs, errors.New("training.max must not be below training.min"))
		}
	}
	if len(c.Staircases) == 0 {
		errs = append(errs, errors.New("at least one staircase is required"))
	}
	seen := make(map[string]bool, len(c.Staircases))
	for _, s := range c.Staircases {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate staircase name %q", s.Name))
		}
		seen[s.Name] = true
	}
	for i, q := range c.Questionnaire {
		if q.Label == "" {
			errs = append(errs, fmt.Errorf("questionnaire[%d]: label is required", i))
		}
		if len(q.Anchors) != 0 && len(q.Anchors) != 2 {
			errs = append(errs, fmt.Errorf("questionnaire %q: anchors must name both ends of the scale", q.Label))
		}
	}
	return errors.Join(errs...)
}
