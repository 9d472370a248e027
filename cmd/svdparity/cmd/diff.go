package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/svdparity/pkg/compare"
	"github.com/OpenTraceLab/svdparity/pkg/svd"
	"github.com/OpenTraceLab/svdparity/pkg/svdxml"
)

var diffFormat string

var errModelsDiffer = errors.New("models differ")

var diffCmd = &cobra.Command{
	Use:   "diff <captured-output> <svd-file>",
	Short: "Compare captured svdconv output with an SVD file",
	Long: `Parse a captured svdconv debug output and the SVD file it was produced from,
then compare both models. Exits with status 1 when they differ.

Examples:
  svdconv device.svd --debug-output-json --quiet > device.json
  svdparity diff device.json device.svd`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffFormat, "format", "auto", "output format: auto, json or text")
}

func runDiff(cmd *cobra.Command, args []string) error {
	captured, svdFile := args[0], args[1]
	out := cmd.OutOrStdout()

	ref, format, ok, err := parseCaptured(captured, diffFormat)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(out, "%s: no usable model, nothing to compare\n", captured)
		return nil
	}

	lib, err := svdxml.NewParser(log).ParseFile(svdFile)
	if err != nil {
		return fmt.Errorf("failed to parse SVD file: %w", err)
	}
	svd.SortTree(lib, format.ElementOrder())

	equal, mismatch := compare.New(log).Compare(ref, lib)
	if equal {
		fmt.Fprintf(out, "models are equal (%d peripheral(s))\n", len(ref))
		return nil
	}
	fmt.Fprintln(out, mismatch)
	return errModelsDiffer
}
