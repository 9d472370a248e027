package svdconv

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

var (
	// ErrMalformed marks output that does not follow the expected grammar.
	ErrMalformed = errors.New("svdconv: malformed output")
	// ErrToolErrors marks output whose run summary reports errors.
	ErrToolErrors = errors.New("svdconv: reference tool reported errors")
)

// Format selects the reference output grammar.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps "json" or "text" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	}
	return 0, fmt.Errorf("svdconv: unknown output format %q", s)
}

// DetectFormat guesses the grammar of a captured output: JSON when some line
// opens an array that a later line closes, text otherwise. Banner and summary
// lines around the array do not matter.
func DetectFormat(output []byte) Format {
	start, end := jsonSpan(bytes.Split(output, []byte("\n")))
	if start >= 0 && end >= start {
		return FormatJSON
	}
	return FormatText
}

// Parser turns the output of one reference tool run into a peripheral forest.
//
// ok is false when the output cannot yield a model: the tool reported errors,
// or the output does not follow the grammar. That is an expected outcome and
// err stays nil. A non-nil err is always fatal for the file, currently only
// *UnmappedTokenError. ok with zero peripherals is an empty but valid model.
type Parser interface {
	Parse(output []byte) (peripherals []svd.Peripheral, ok bool, err error)
}

// NewParser returns the Parser for format. A nil logger uses slog.Default.
func NewParser(format Format, logger *slog.Logger) (Parser, error) {
	switch format {
	case FormatJSON:
		return NewJSONParser(logger), nil
	case FormatText:
		return NewTextParser(logger)
	}
	return nil, fmt.Errorf("svdconv: unsupported format %s", format)
}

// absorb converts every non-fatal parse failure into the "no model" result.
func absorb(logger *slog.Logger, format Format, ps []svd.Peripheral, err error) ([]svd.Peripheral, bool, error) {
	if err == nil {
		return ps, true, nil
	}
	var tokenErr *UnmappedTokenError
	if errors.As(err, &tokenErr) {
		return nil, false, err
	}
	logger.Error("reference output has no usable model", "format", format.String(), "error", err)
	return nil, false, nil
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// ElementOrder returns the register and cluster order the parser for f
// produces. A model compared against f's output must be sorted the same way.
func (f Format) ElementOrder() svd.ElementOrder {
	if f == FormatText {
		return svd.ByAddressOffset
	}
	return svd.ByBaseAddress
}
