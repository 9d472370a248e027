// Package validate runs the parity check over a tree of unpacked CMSIS packs.
//
// For every SVD file the pipeline
//
//  1. runs svdconv once for its error/warning summary and skips the file when
//     it reports errors,
//  2. runs svdconv again with debug output and parses it into the reference
//     model (svdconv.Parser),
//  3. parses the SVD XML into the library model (svdxml.Parser),
//  4. compares both (compare.Comparator).
//
// A difference fails the run unless the file is in the accepted-differences
// allow-list. SVD files are expected in <vendor>.<pack>.<version> directories
// as produced by unpacking .pack archives.
//
// Basic usage:
//
//	v, err := validate.New(validate.DefaultConfig(), logger)
//	metas, err := validate.Discover("packs/", nil, nil)
//	report, err := v.Run(ctx, metas)
//	if report.Failed() { ... }
package validate
