package svdconv

import (
	"fmt"
	"regexp"
	"strconv"
)

var summaryPattern = regexp.MustCompile(`Found (\d+) Error\(s\) and (\d+) Warning\(s\)`)

// Summary is the error and warning count printed at the end of every svdconv run.
type Summary struct {
	Errors   int
	Warnings int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d error(s), %d warning(s)", s.Errors, s.Warnings)
}

// ParseSummary finds the "Found <N> Error(s) and <M> Warning(s)" line in output.
func ParseSummary(output []byte) (Summary, bool) {
	m := summaryPattern.FindSubmatch(output)
	if m == nil {
		return Summary{}, false
	}
	errs, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return Summary{}, false
	}
	warns, err := strconv.Atoi(string(m[2]))
	if err != nil {
		return Summary{}, false
	}
	return Summary{Errors: errs, Warnings: warns}, true
}

func isSummaryLine(line string) bool {
	return summaryPattern.MatchString(line)
}

// checkSummary fails when the output carries a summary with a non-zero error
// count, whatever else the output contains.
func checkSummary(output []byte) error {
	s, ok := ParseSummary(output)
	if ok && s.Errors > 0 {
		return fmt.Errorf("%w: %s", ErrToolErrors, s)
	}
	return nil
}
