// Package config carries the container configuration. The backend used by
// default and the stable ABI mode are resolved at build time through the
// assoc_ordered and assoc_stableabi build tags; the tuning knobs in Config
// are loaded from YAML and handed to constructors by reference.
package config
