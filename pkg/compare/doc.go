// Package compare checks that two svd forests describe the same device.
//
// The comparison is positional: the i-th peripheral of the reference is paired
// with the i-th peripheral of the library model, and likewise at every level
// below. Producers are responsible for sorting (see package svd). A list length
// mismatch is reported before any of its items is looked at.
//
// The walk is depth first and stops at the first divergence. Within a node the
// scalar attributes come first, then the child lists in this order:
//
//	peripheral        address blocks, interrupts, registers and clusters
//	cluster           registers and clusters
//	register          fields
//	field             enumerated value containers
//	container         enumerated values
//
// The result is deterministic for a given pair of inputs, so the reported
// Mismatch can be used as a stable diagnostic.
package compare
