//go:build assoc_ordered

package config

// DefaultBackend is fixed at build time by the assoc_ordered tag.
const DefaultBackend = BackendOrdered
