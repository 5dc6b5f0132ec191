// Package config holds interpreter limits and the optional brio.toml
// project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the brio.toml file contents.
type Config struct {
	VM   VMConfig   `toml:"vm"`
	REPL REPLConfig `toml:"repl"`
}

// VMConfig tunes the virtual machine.
type VMConfig struct {
	MaxFrames int  `toml:"max-frames"`
	Trace     bool `toml:"trace"`
}

// REPLConfig tunes the interactive prompt.
type REPLConfig struct {
	Prompt string `toml:"prompt"`
}

// Default returns the configuration used when no brio.toml is present.
func Default() *Config {
	return &Config{
		VM:   VMConfig{MaxFrames: DefaultMaxFrames},
		REPL: REPLConfig{Prompt: DefaultPrompt},
	}
}

// Load parses a brio.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "brio.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if c.VM.MaxFrames <= 0 {
		c.VM.MaxFrames = DefaultMaxFrames
	}
	if c.REPL.Prompt == "" {
		c.REPL.Prompt = DefaultPrompt
	}

	if os.Getenv(TraceEnvVar) == "1" {
		c.VM.Trace = true
	}

	return c, nil
}

// FindAndLoad walks up from startDir looking for a brio.toml file and
// loads the first one found. Returns the defaults if none exists.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "brio.toml")); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	c := Default()
	if os.Getenv(TraceEnvVar) == "1" {
		c.VM.Trace = true
	}
	return c, nil
}
