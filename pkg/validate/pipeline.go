package validate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/svdparity/pkg/compare"
	"github.com/OpenTraceLab/svdparity/pkg/svd"
	"github.com/OpenTraceLab/svdparity/pkg/svdconv"
	"github.com/OpenTraceLab/svdparity/pkg/svdxml"
)

// Status is the outcome of checking one SVD file.
type Status int

const (
	StatusEqual     Status = iota // models are identical
	StatusAccepted                // models differ, difference is in the allow-list
	StatusSkipped                 // reference tool produced no usable model
	StatusDifferent               // models differ
	StatusFailed                  // the file could not be checked
)

func (s Status) String() string {
	switch s {
	case StatusEqual:
		return "equal"
	case StatusAccepted:
		return "accepted"
	case StatusSkipped:
		return "skipped"
	case StatusDifferent:
		return "different"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome for one file.
type Result struct {
	Meta     Meta
	Status   Status
	Summary  svdconv.Summary
	Mismatch *compare.Mismatch // Different and Accepted
	Reason   string            // Skipped and Accepted
	Err      error             // Failed
	Duration time.Duration
}

// Report holds the results of a run in input order.
type Report struct {
	Results []Result
}

// Failed reports whether any file differs or could not be checked.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusDifferent || res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// ReferenceTool runs the reference implementation. *svdconv.Runner implements it.
type ReferenceTool interface {
	Summary(ctx context.Context, svdPath string) (svdconv.Summary, error)
	Output(ctx context.Context, svdPath string, format svdconv.Format) ([]byte, error)
}

// Library builds the model under test. *svdxml.Parser implements it.
type Library interface {
	ParseFile(path string) ([]svd.Peripheral, error)
}

// Validator checks SVD files against the reference tool.
type Validator struct {
	Config    *Config
	Tool      ReferenceTool
	Library   Library
	AllowList *AllowList
	Logger    *slog.Logger
}

// New returns a Validator using svdconv and svdxml as configured by cfg.
func New(cfg *Config, logger *slog.Logger) (*Validator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	allow, err := LoadAllowList(cfg.AcceptedDifferences)
	if err != nil {
		return nil, err
	}
	return &Validator{
		Config: cfg,
		Tool: &svdconv.Runner{
			Path:    cfg.ReferenceTool,
			Timeout: cfg.Timeout,
			Logger:  logger,
		},
		Library:   svdxml.NewParser(logger),
		AllowList: allow,
		Logger:    logger,
	}, nil
}

// Run checks metas concurrently, at most Config.Jobs at a time. The error is
// non-nil only when ctx is cancelled; per file failures are in the Report.
func (v *Validator) Run(ctx context.Context, metas []Meta) (Report, error) {
	results := make([]Result, len(metas))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(v.Config.Jobs, 1))

	for i, m := range metas {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = v.Check(groupCtx, m)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Report{}, fmt.Errorf("validate: %w", err)
	}
	return Report{Results: results}, nil
}

// Check runs the pipeline for a single file.
func (v *Validator) Check(ctx context.Context, m Meta) Result {
	start := time.Now()
	log := v.Logger.With("file", m.String())

	res := v.check(ctx, m, log)
	res.Meta = m
	res.Duration = time.Since(start)

	switch res.Status {
	case StatusEqual:
		log.Info("models are equal", "duration", res.Duration)
	case StatusAccepted:
		log.Info("accepted difference", "mismatch", res.Mismatch.String(), "reason", res.Reason)
	case StatusSkipped:
		log.Info("skipped", "reason", res.Reason)
	case StatusDifferent:
		log.Error("difference is not accepted", "mismatch", res.Mismatch.String())
	case StatusFailed:
		log.Error("check failed", "error", res.Err)
	}
	return res
}

func (v *Validator) check(ctx context.Context, m Meta, log *slog.Logger) Result {
	format := v.Config.Format

	summary, err := v.Tool.Summary(ctx, m.Path)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}
	log.Debug("reference summary", "summary", summary.String())
	if summary.Errors > 0 {
		return Result{Status: StatusSkipped, Summary: summary, Reason: "reference tool reported " + summary.String()}
	}

	output, err := v.Tool.Output(ctx, m.Path, format)
	if err != nil {
		return Result{Status: StatusFailed, Summary: summary, Err: err}
	}

	parser, err := svdconv.NewParser(format, log)
	if err != nil {
		return Result{Status: StatusFailed, Summary: summary, Err: err}
	}
	ref, ok, err := parser.Parse(output)
	if err != nil {
		return Result{Status: StatusFailed, Summary: summary, Err: err}
	}
	if !ok {
		return Result{Status: StatusSkipped, Summary: summary, Reason: "no usable model in reference output"}
	}
	log.Debug("reference model", "peripherals", len(ref), "registers", countRegisters(ref))

	lib, err := v.Library.ParseFile(m.Path)
	if err != nil {
		return Result{Status: StatusFailed, Summary: summary, Err: err}
	}
	svd.SortTree(lib, format.ElementOrder())
	log.Debug("library model", "peripherals", len(lib), "registers", countRegisters(lib))

	equal, mismatch := compare.New(log).Compare(ref, lib)
	if equal {
		return Result{Status: StatusEqual, Summary: summary}
	}
	if accepted, ok := v.AllowList.Accepts(m); ok {
		return Result{Status: StatusAccepted, Summary: summary, Mismatch: mismatch, Reason: accepted.Reason}
	}
	return Result{Status: StatusDifferent, Summary: summary, Mismatch: mismatch}
}

func countRegisters(ps []svd.Peripheral) int {
	n := 0
	for i := range ps {
		n += ps[i].CountRegisters()
	}
	return n
}
