package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/hdt/internal/config"
)

// RunOptions contains all the configuration for the Run command.
// Zero values leave the file configuration untouched.
type RunOptions struct {
	ConfigPath   string
	Toolkit      bool // ConfigPath is a lab toolkit participant file
	Participant  string
	OutDir       string
	Port         string
	Simulate     bool
	Debug        bool
	SQLite       string
	RedisURL     string
	Monitor      string
	Instructions string
	Seed         uint64

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Execute handles the 'run' command logic.
func Execute(opts RunOptions) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return RunSession(cfg, opts)
}

// LoadConfig reads the configuration named by opts and applies the flag overrides.
func LoadConfig(opts RunOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if opts.Toolkit {
			cfg, err = config.LoadToolkit(opts.ConfigPath)
		} else {
			cfg, err = config.Load(opts.ConfigPath)
		}
		if err != nil {
			return config.Config{}, err
		}
	}
	applyOverrides(&cfg, opts)
	return cfg, nil
}

func applyOverrides(cfg *config.Config, opts RunOptions) {
	if opts.Participant != "" {
		cfg.ParticipantID = opts.Participant
	}
	if opts.OutDir != "" {
		cfg.OutputDir = opts.OutDir
	}
	if opts.Port != "" {
		cfg.Device.Port = opts.Port
	}
	if opts.Simulate {
		cfg.Device.Simulate = true
	}
	if opts.Debug {
		cfg.Debug = true
	}
	if opts.SQLite != "" {
		cfg.SQLitePath = opts.SQLite
	}
	if opts.RedisURL != "" {
		cfg.Redis.URL = opts.RedisURL
	}
	if opts.Monitor != "" {
		cfg.Monitor.Addr = opts.Monitor
	}
	if opts.Instructions != "" {
		cfg.InstructionsDir = opts.Instructions
	}
	if opts.Seed != 0 {
		cfg.Training.Seed = opts.Seed
	}
}
