package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/svdparity/pkg/svdconv"
	"github.com/OpenTraceLab/svdparity/pkg/validate"
)

var (
	svdconvPath  string
	checkFormat  string
	checkJobs    int
	checkTimeout time.Duration
	acceptedFile string
	includeGlobs []string
	excludeGlobs []string
)

var checkCmd = &cobra.Command{
	Use:   "check <svd-file-or-dir>",
	Short: "Check SVD files against svdconv",
	Long: `Run svdconv on every SVD file below a directory (or on a single file), parse
its debug output and compare it with the svdparity library model.

SVD files must sit directly in a <vendor>.<pack>.<version> directory, the layout
of unpacked CMSIS packs. Files with svdconv errors are skipped. A difference
listed in the accepted-differences file does not fail the run.

Examples:
  svdparity check packs/
  svdparity check --svdconv /opt/cmsis/svdconv --jobs 8 packs/
  svdparity check --include 'Maxim.*/**' --exclude '**/max32570.svd' packs/
  svdparity check --accepted accepted.yaml packs/Geehy.APM32E1xx_DFP.1.0.0/APM32E103xx.svd`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&svdconvPath, "svdconv", "svdconv", "svdconv executable")
	checkCmd.Flags().StringVar(&checkFormat, "format", "json", "svdconv debug output format: json or text")
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", runtime.NumCPU(), "files checked in parallel")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", svdconv.DefaultTimeout, "timeout for one svdconv run")
	checkCmd.Flags().StringVar(&acceptedFile, "accepted", "", "accepted differences YAML (default: built-in list)")
	checkCmd.Flags().StringArrayVar(&includeGlobs, "include", nil, "only check files matching this pattern (repeatable)")
	checkCmd.Flags().StringArrayVar(&excludeGlobs, "exclude", nil, "skip files matching this pattern (repeatable)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := svdconv.ParseFormat(checkFormat)
	if err != nil {
		return err
	}

	cfg := validate.DefaultConfig()
	cfg.ReferenceTool = svdconvPath
	cfg.Format = format
	cfg.Jobs = checkJobs
	cfg.Timeout = checkTimeout
	cfg.AcceptedDifferences = acceptedFile
	cfg.Include = includeGlobs
	cfg.Exclude = excludeGlobs

	v, err := validate.New(cfg, log)
	if err != nil {
		return err
	}

	metas, err := validate.Discover(args[0], cfg.Include, cfg.Exclude)
	if err != nil {
		return err
	}
	log.Info("checking SVD files", "files", len(metas), "jobs", cfg.Jobs, "format", format.String())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := v.Run(ctx, metas)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), &report)
	if report.Failed() {
		return fmt.Errorf("%d file(s) differ, %d file(s) failed",
			report.Count(validate.StatusDifferent), report.Count(validate.StatusFailed))
	}
	return nil
}

func printReport(w io.Writer, report *validate.Report) {
	for _, res := range report.Results {
		switch res.Status {
		case validate.StatusDifferent:
			fmt.Fprintf(w, "DIFFERENT %s\n  %s\n", res.Meta, res.Mismatch)
		case validate.StatusFailed:
			fmt.Fprintf(w, "FAILED    %s\n  %v\n", res.Meta, res.Err)
		case validate.StatusAccepted:
			fmt.Fprintf(w, "ACCEPTED  %s\n  %s\n", res.Meta, res.Mismatch)
		}
	}

	fmt.Fprintf(w, "\nChecked %d file(s): %d equal, %d accepted, %d skipped, %d different, %d failed\n",
		len(report.Results),
		report.Count(validate.StatusEqual),
		report.Count(validate.StatusAccepted),
		report.Count(validate.StatusSkipped),
		report.Count(validate.StatusDifferent),
		report.Count(validate.StatusFailed),
	)
}
