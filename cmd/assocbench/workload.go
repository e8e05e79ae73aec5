package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Workload describes one benchmark run.
type Workload struct {
	Keys    int     `yaml:"keys"`
	Lookups int     `yaml:"lookups"`
	Erase   float64 `yaml:"erase"`
	Ranges  int     `yaml:"ranges"`
	Seed    uint64  `yaml:"seed"`
}

func workloadFromOptions(opts *Options) Workload {
	return Workload{
		Keys:    opts.Keys,
		Lookups: opts.Lookups,
		Erase:   opts.Erase,
		Ranges:  opts.Ranges,
		Seed:    opts.Seed,
	}
}

// loadWorkload overlays the YAML file at path on w.
func loadWorkload(path string, w Workload) (Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return w, errors.Wrapf(err, "failed to read workload %q", path)
	}

	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, errors.Wrapf(err, "failed to parse workload %q", path)
	}

	return w, w.Validate()
}

func (w Workload) Validate() error {
	if w.Keys < 0 || w.Lookups < 0 || w.Ranges < 0 {
		return errors.New("workload counts must not be negative")
	}

	if w.Erase < 0 || w.Erase > 1 {
		return errors.Errorf("erase must be in [0, 1], got %v", w.Erase)
	}

	return nil
}
