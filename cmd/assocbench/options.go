package main

// Options are parsed by github.com/jessevdk/go-flags.
type Options struct {
	Config   string `short:"f" long:"config" description:"container configuration YAML path"`
	Workload string `short:"w" long:"workload" description:"workload YAML path, overrides the workload flags"`
	Backend  string `short:"b" long:"backend" choice:"hash" choice:"ordered" description:"backend, overrides the configuration"`

	Keys    int     `short:"n" long:"keys" default:"100000" description:"number of distinct keys to insert"`
	Lookups int     `long:"lookups" default:"100000" description:"number of lookups, half of them misses"`
	Erase   float64 `long:"erase" default:"0.5" description:"fraction of keys erased after the lookups"`
	Ranges  int     `long:"ranges" default:"100" description:"number of range scans on the ordered backend"`
	Seed    uint64  `long:"seed" default:"1" description:"random seed"`

	MaxMemory string `long:"max-memory" description:"slot memory ceiling of the hash backend, e.g. 64MiB"`

	Metrics bool `long:"metrics" description:"print the collected counters after the run"`
}
