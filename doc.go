// Package assoc provides Map and Set containers that can be backed either by
// a swiss hash table (package hashstore) or by an AVL tree (package
// orderedstore). Both backends implement the same operations, so switching is
// a matter of construction options or of the assoc_ordered build tag.
//
// Built with the assoc_stableabi tag, every container routes its calls
// through the type-erased container of package abi instead of the generic
// stores.
//
// Nothing in this package is goroutine-safe.
package assoc
