package validate

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/OpenTraceLab/svdparity/pkg/svdconv"
)

// Config controls a validation run.
type Config struct {
	// Reference tool
	ReferenceTool string         // svdconv executable (default: "svdconv" from PATH)
	Format        svdconv.Format // debug output grammar to request (default: JSON)
	Timeout       time.Duration  // per svdconv invocation (default: 2m)

	// Scheduling
	Jobs int // files checked concurrently (default: number of CPUs)

	// File selection, doublestar patterns relative to the discovery root
	Include []string
	Exclude []string

	// AcceptedDifferences is a YAML allow-list. Empty uses the built-in list.
	AcceptedDifferences string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ReferenceTool: "svdconv",
		Format:        svdconv.FormatJSON,
		Timeout:       svdconv.DefaultTimeout,
		Jobs:          runtime.NumCPU(),
	}
}

// Validate fills in defaults and checks the patterns.
func (c *Config) Validate() error {
	if c.ReferenceTool == "" {
		c.ReferenceTool = "svdconv"
	}
	if c.Timeout <= 0 {
		c.Timeout = svdconv.DefaultTimeout
	}
	if c.Jobs < 1 {
		c.Jobs = runtime.NumCPU()
	}
	if c.Format != svdconv.FormatJSON && c.Format != svdconv.FormatText {
		return fmt.Errorf("validate: unsupported format %s", c.Format)
	}

	for _, p := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("validate: invalid pattern %q", p)
		}
	}
	return nil
}
