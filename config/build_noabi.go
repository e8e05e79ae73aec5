//go:build !assoc_stableabi

package config

// StableABI reports whether the facades route through package abi.
const StableABI = false
