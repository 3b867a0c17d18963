// Package config loads the server configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/twipi/utttt/game"
	"github.com/twipi/utttt/session"
	"gopkg.in/yaml.v2"
)

// Config is the server configuration. Fields missing from the file keep
// their default values.
type Config struct {
	Weights       game.Weights   `yaml:"weights"`
	Depths        session.Depths `yaml:"depths"`
	SessionExpiry time.Duration  `yaml:"session_expiry"`
	SweepInterval time.Duration  `yaml:"sweep_interval"`
}

// Default returns the default configuration.
func Default() Config {
	opts := session.DefaultOptions()
	return Config{
		Weights:       opts.Weights,
		Depths:        opts.Depths,
		SessionExpiry: opts.Expiry,
		SweepInterval: opts.SweepInterval,
	}
}

// Load reads the configuration file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration can run a server.
func (c Config) Validate() error {
	var errs []error
	for _, d := range []struct {
		name  string
		depth int
	}{
		{"easy", c.Depths.Easy},
		{"medium", c.Depths.Medium},
		{"hard", c.Depths.Hard},
	} {
		if d.depth < 1 {
			errs = append(errs, fmt.Errorf("depth %s must be at least 1, got %d", d.name, d.depth))
		}
	}
	if c.Weights.ForcedMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("forced_multiplier must be positive, got %v", c.Weights.ForcedMultiplier))
	}
	if c.SessionExpiry <= 0 {
		errs = append(errs, fmt.Errorf("session_expiry must be positive, got %v", c.SessionExpiry))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweep_interval must be positive, got %v", c.SweepInterval))
	}
	return errors.Join(errs...)
}

// SessionOptions returns the session store options of the configuration.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		Depths:        c.Depths,
		Weights:       c.Weights,
		Expiry:        c.SessionExpiry,
		SweepInterval: c.SweepInterval,
	}
}
