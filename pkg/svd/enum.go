package svd

import (
	"errors"
	"fmt"
)

// MaxDefaultExpansionWidth bounds the field width for which a default
// enumerated value is materialized. Wider fields would need 2^width entries.
const MaxDefaultExpansionWidth = 20

// ErrDefaultTooWide is returned by ExpandDefault when the field is wider than
// MaxDefaultExpansionWidth.
var ErrDefaultTooWide = errors.New("svd: default enumerated value on field too wide to expand")

// ExpandDefault replaces default entries in values with one entry per bit
// pattern of a width-bit field that no explicit entry covers. Generated entries
// are named <default name>_<value>. When several default entries are present
// the last one names the generated entries. The result is not sorted.
func ExpandDefault(values []EnumeratedValue, width int) ([]EnumeratedValue, error) {
	var def *EnumeratedValue
	for i := range values {
		if values[i].IsDefault {
			def = &values[i]
		}
	}
	if def == nil {
		return values, nil
	}
	if width < 0 || width > MaxDefaultExpansionWidth {
		return nil, fmt.Errorf("%w: %q spans %d bits", ErrDefaultTooWide, def.Name, width)
	}

	covered := make(map[uint64]bool, len(values))
	result := make([]EnumeratedValue, 0, 1<<width)
	for _, v := range values {
		if v.IsDefault {
			continue
		}
		covered[v.Value] = true
		result = append(result, v)
	}

	limit := uint64(1) << width
	for v := uint64(0); v < limit; v++ {
		if covered[v] {
			continue
		}
		result = append(result, EnumeratedValue{
			Name:  fmt.Sprintf("%s_%d", def.Name, v),
			Value: v,
		})
	}
	return result, nil
}
