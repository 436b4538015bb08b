package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/hdt/internal/config"
)

// DefaultConfigFile is the file written by InitConfig when no path is given.
const DefaultConfigFile = "hdt.yaml"

// ErrConfigExists is returned by InitConfig when the target file exists.
var ErrConfigExists = errors.New("config file already exists")

// InitConfig writes the default configuration to path.
// An existing file is only replaced when force is set.
func InitConfig(path string, force bool) (string, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, config.DefaultYAML(), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// ValidateConfig loads a configuration file and reports every problem found.
func ValidateConfig(path string, toolkit bool) (config.Config, error) {
	cfg, err := LoadConfig(RunOptions{ConfigPath: path, Toolkit: toolkit})
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
