package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInitialCapacity  = 8
	DefaultMaxCapacity      = 1 << 30
	DefaultMaxLoadFactor    = 7.0 / 8.0
	DefaultShrinkLoadFactor = 1.0 / 8.0
)

type Config struct {
	Backend          string  `yaml:"backend,omitempty" json:"backend,omitempty"`
	InitialCapacity  int     `yaml:"initialCapacity,omitempty" json:"initialCapacity,omitempty"`
	MaxCapacity      int     `yaml:"maxCapacity,omitempty" json:"maxCapacity,omitempty"`
	MaxLoadFactor    float64 `yaml:"maxLoadFactor,omitempty" json:"maxLoadFactor,omitempty"`
	ShrinkLoadFactor float64 `yaml:"shrinkLoadFactor,omitempty" json:"shrinkLoadFactor,omitempty"`
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Backend:          DefaultBackend.String(),
		InitialCapacity:  DefaultInitialCapacity,
		MaxCapacity:      DefaultMaxCapacity,
		MaxLoadFactor:    DefaultMaxLoadFactor,
		ShrinkLoadFactor: DefaultShrinkLoadFactor,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", path)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := ParseBackend(c.Backend); err != nil {
		return err
	}

	if c.InitialCapacity < 0 {
		return errors.Errorf("initialCapacity must not be negative, got %d", c.InitialCapacity)
	}

	if c.MaxCapacity < 0 {
		return errors.Errorf("maxCapacity must not be negative, got %d", c.MaxCapacity)
	}

	if c.MaxCapacity > 0 && c.MaxCapacity < c.InitialCapacity {
		return errors.Errorf("maxCapacity %d is below initialCapacity %d", c.MaxCapacity, c.InitialCapacity)
	}

	if c.MaxLoadFactor <= 0 || c.MaxLoadFactor >= 1 {
		return errors.Errorf("maxLoadFactor must be in (0, 1), got %v", c.MaxLoadFactor)
	}

	if c.ShrinkLoadFactor < 0 || c.ShrinkLoadFactor >= c.MaxLoadFactor/4 {
		return errors.Errorf("shrinkLoadFactor must be in [0, maxLoadFactor/4), got %v", c.ShrinkLoadFactor)
	}

	return nil
}

// ResolvedBackend returns the backend named by the configuration.
// It assumes Validate has succeeded.
func (c *Config) ResolvedBackend() Backend {
	b, err := ParseBackend(c.Backend)
	if err != nil {
		return DefaultBackend
	}

	return b
}
