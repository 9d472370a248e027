package svdconv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultTimeout bounds one reference tool invocation when Runner.Timeout is zero.
const DefaultTimeout = 2 * time.Minute

// ErrNoSummary is returned when a run prints no "Found ... Error(s)" line.
var ErrNoSummary = errors.New("svdconv: no error/warning summary in output")

// Runner invokes the svdconv executable on SVD files.
type Runner struct {
	// Path is the svdconv executable. Empty means "svdconv" from PATH.
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger
}

// Summary runs svdconv on svdPath without extra arguments and returns the
// error and warning count it reports.
func (r *Runner) Summary(ctx context.Context, svdPath string) (Summary, error) {
	out, err := r.run(ctx, svdPath)
	if err != nil {
		return Summary{}, err
	}
	s, ok := ParseSummary(out)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrNoSummary, svdPath)
	}
	return s, nil
}

// Output runs svdconv with the debug output flags of format and returns stdout.
func (r *Runner) Output(ctx context.Context, svdPath string, format Format) ([]byte, error) {
	var args []string
	switch format {
	case FormatJSON:
		args = []string{"--debug-output-json", "--quiet"}
	case FormatText:
		args = []string{"--debug-output", "--quiet"}
	default:
		return nil, fmt.Errorf("svdconv: unsupported format %s", format)
	}
	return r.run(ctx, svdPath, args...)
}

// run returns stdout. svdconv exits non-zero on warnings, so a failed exit
// with output is not an error.
func (r *Runner) run(ctx context.Context, svdPath string, args ...string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path := r.Path
	if path == "" {
		path = "svdconv"
	}
	cmd := exec.CommandContext(ctx, path, append([]string{svdPath}, args...)...)

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || len(out) == 0 || !isExitError(err) {
			return nil, fmt.Errorf("svdconv: '%s' failed: %w", cmd, err)
		}
		orDefault(r.Logger).Debug("svdconv exited with error", "svd", svdPath, "error", err)
	}
	orDefault(r.Logger).Debug("svdconv finished", "svd", svdPath, "args", args, "bytes", len(out))
	return out, nil
}

func isExitError(err error) bool {
	var v *exec.ExitError
	return errors.As(err, &v)
}
