// Package svdconv runs the Open-CMSIS-Pack svdconv reference tool and turns its
// debug output into the svd model.
//
// svdconv prints its processed view of an SVD file in two grammars:
//
//	svdconv device.svd --debug-output-json --quiet   JSON array of peripherals
//	svdconv device.svd --debug-output --quiet        indented text sections
//
// Both are handled by a Parser (see NewParser). Either way the result is the
// canonical forest described in package svd, so it can be compared directly
// with a model built by another producer.
//
// Parsing has three outcomes:
//
//   - ok: the forest, possibly empty
//   - no model (ok == false, err == nil): svdconv reported errors in its
//     "Found <N> Error(s) and <M> Warning(s)" summary, or the output does not
//     follow the grammar. The failure is logged.
//   - fatal (err != nil): a token outside the known svdconv vocabulary, reported
//     as *UnmappedTokenError. Absorbing it would hide a tool upgrade.
//
// Runner wraps the executable itself: Summary for the plain run that yields the
// error count, Output for the debug run that feeds a Parser.
package svdconv
