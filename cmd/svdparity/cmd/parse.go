package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
	"github.com/OpenTraceLab/svdparity/pkg/svdconv"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <captured-output>",
	Short: "Parse captured svdconv debug output",
	Long: `Parse the output of "svdconv --debug-output-json" or "svdconv --debug-output"
and print the peripheral model as a tree.

Examples:
  svdconv device.svd --debug-output-json --quiet > device.json
  svdparity parse device.json
  svdparity parse --format text device.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseFormat, "format", "auto", "output format: auto, json or text")
}

func runParse(cmd *cobra.Command, args []string) error {
	ps, format, ok, err := parseCaptured(args[0], parseFormat)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "%s: no usable model\n", args[0])
		return nil
	}

	registers := 0
	for i := range ps {
		registers += ps[i].CountRegisters()
	}
	fmt.Fprintf(out, "%s: %d peripheral(s), %d register(s) (%s)\n\n", args[0], len(ps), registers, format)
	printTree(out, ps)
	return nil
}

// parseCaptured reads a captured svdconv output. formatName "auto" detects
// the format from the content.
func parseCaptured(filename, formatName string) ([]svd.Peripheral, svdconv.Format, bool, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read file: %w", err)
	}

	var format svdconv.Format
	if formatName == "auto" {
		format = svdconv.DetectFormat(data)
		log.Debug("detected output format", "file", filename, "format", format.String())
	} else if format, err = svdconv.ParseFormat(formatName); err != nil {
		return nil, 0, false, err
	}

	parser, err := svdconv.NewParser(format, log)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create parser: %w", err)
	}
	ps, ok, err := parser.Parse(data)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return ps, format, ok, nil
}
