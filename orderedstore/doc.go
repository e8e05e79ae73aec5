// Package orderedstore implements the ordered store of the assoc containers:
// an AVL tree keyed by a caller supplied total order, with O(log n) lookups,
// ascending iteration and half-open range queries.
package orderedstore
