// Package abi is the type-erased boundary of the assoc containers.
//
// A Container never sees a concrete key or value type. Every entry point
// takes fixed layout Handles (pointer, size, alignment) and returns an
// errcode.Code, and all type specific behaviour (hashing, equality,
// ordering, copying, destruction) comes from the KeyOps and ValueOps tables
// of plain function pointers supplied at construction. Code compiled against
// one set of concrete types can therefore drive a Container built elsewhere
// without instantiating any generic code on its side.
//
// The price is one indirect call per hash, comparison and copy, plus one
// allocation per stored key and value, compared to the generic stores.
// Typed wraps a Container back into a generic API and is what the assoc
// facades use when built with the assoc_stableabi tag.
package abi
