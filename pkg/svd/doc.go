// Package svd holds the processed System View Description model shared by
// every producer and consumer in svdparity.
//
// A device is an ordered forest of Peripheral values. Each peripheral owns
// address blocks, interrupts and a list of Element children, where an Element
// is either a Register or a Cluster; clusters nest arbitrarily deep. Registers
// own fields, fields own enumerated value containers.
//
// Producers must leave the forest in a canonical state before handing it to a
// consumer:
//   - every list sorted with the Sort* helpers of this package
//   - Register and Cluster BaseAddress absolute (see Peripheral.ResolveAddresses)
//   - default enumerated values materialized with ExpandDefault
//
// Field bit ranges are never stored; LSB, MSB and BitRange derive from
// BitOffset and BitWidth.
package svd
