// Package svdxml is the library side of the parity check: it reads CMSIS SVD
// XML directly and produces the processed svd model without svdconv.
//
// Processing follows the SVD schema:
//
//   - size, access, protection, resetValue and resetMask inherit from device
//     to peripheral to cluster to register; fields inherit access,
//     modifiedWriteValues and readAction from their register
//   - derivedFrom on a peripheral copies it and overlays what the derived
//     element sets, except interrupts which stay with the original; on
//     registers, clusters, fields and enumeratedValues it resolves among
//     siblings
//   - dim arrays expand %s in names with the dimIndex entries ("0-7", "A-D",
//     "X,Y,Z", or 0..dim-1 when absent) and step offsets by dimIncrement
//   - field positions come from bitOffset/bitWidth, lsb/msb or bitRange
//   - binary enumerated values with x bits match every value the pattern
//     allows; isDefault entries expand with svd.ExpandDefault
//
// A value outside one of the SVD enumerations is reported as *TokenError.
package svdxml
