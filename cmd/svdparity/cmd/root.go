package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/svdparity/internal/logger"
)

var (
	// Global flags
	verbose  bool
	logLevel string

	log = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "svdparity",
	Short: "Check an SVD parser against svdconv",
	Long: `Compare the peripheral model svdconv builds from CMSIS SVD files with the
model built by the svdparity SVD library, and report the first difference.

Examples:
  svdparity check packs/                                 # Check every SVD file under packs/
  svdparity check --format text --jobs 4 packs/Keil.*    # Use the indented text debug output
  svdparity parse svdconv-output.json                    # Show a captured svdconv model
  svdparity diff svdconv-output.json device.svd          # Compare a captured run with one file`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		if verbose {
			level = slog.LevelDebug
		}
		log = logger.New(cmd.ErrOrStderr(), level)
		slog.SetDefault(log)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
}
