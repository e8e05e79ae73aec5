package config

import (
	"github.com/pkg/errors"
)

// Backend selects the store behind a Map or Set.
type Backend uint8

const (
	BackendHash Backend = iota
	BackendOrdered
)

func (b Backend) String() string {
	switch b {
	case BackendHash:
		return "hash"
	case BackendOrdered:
		return "ordered"
	default:
		return "unknown"
	}
}

// ParseBackend accepts the names produced by Backend.String. An empty name
// resolves to DefaultBackend.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "":
		return DefaultBackend, nil
	case "hash":
		return BackendHash, nil
	case "ordered":
		return BackendOrdered, nil
	default:
		return 0, errors.Errorf("unknown backend %q", name)
	}
}
