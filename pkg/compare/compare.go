package compare

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// MismatchKind classifies a divergence.
type MismatchKind int

const (
	// KindValue is a scalar attribute that differs.
	KindValue MismatchKind = iota
	// KindCount is a child list whose lengths differ.
	KindCount
	// KindType is a register on one side paired with a cluster on the other.
	KindType
)

func (k MismatchKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindCount:
		return "count"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Segment is one step of the path to a mismatch.
type Segment struct {
	Kind  string // "peripheral", "register", "cluster", "field", ...
	Name  string
	Index int
}

func (s Segment) String() string {
	if s.Name == "" {
		return fmt.Sprintf("%s #%d", s.Kind, s.Index)
	}
	return s.Kind + " " + s.Name
}

// Mismatch is the first divergence between the reference and the library
// forest. Ref and Lib hold the two differing values; for KindCount they are
// the list lengths.
type Mismatch struct {
	Path      []Segment
	Attribute string
	Kind      MismatchKind
	Ref       any
	Lib       any
}

// Location renders Path, e.g. "peripheral TIMER0 > cluster CH > register CNT".
func (m *Mismatch) Location() string {
	if len(m.Path) == 0 {
		return "device"
	}
	parts := make([]string, len(m.Path))
	for i, s := range m.Path {
		parts[i] = s.String()
	}
	return strings.Join(parts, " > ")
}

func (m *Mismatch) String() string {
	switch m.Kind {
	case KindCount:
		return fmt.Sprintf("%s: %s count mismatch: %v (reference) != %v (library)", m.Location(), m.Attribute, m.Ref, m.Lib)
	case KindType:
		return fmt.Sprintf("%s: type mismatch: %v (reference) != %v (library)", m.Location(), m.Ref, m.Lib)
	}
	return fmt.Sprintf("%s: %s mismatch: %v (reference) != %v (library)", m.Location(), m.Attribute, m.Ref, m.Lib)
}

// Comparator walks a reference and a library forest in lock-step.
type Comparator struct {
	logger *slog.Logger
}

// New returns a Comparator. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{logger: logger}
}

// Compare reports whether ref and lib agree. Both must be sorted the same way;
// children are paired by index. The walk stops at the first divergence, which
// is returned and logged at warn level.
//
// Reset values and reset masks are never compared: svdconv reports them
// unreliably. Peripheral disableCondition is not compared either.
func (c *Comparator) Compare(ref, lib []svd.Peripheral) (bool, *Mismatch) {
	w := &walker{}
	if w.peripherals(ref, lib) {
		return true, nil
	}
	c.logger.Warn("models differ",
		"at", w.mismatch.Location(),
		"attribute", w.mismatch.Attribute,
		"kind", w.mismatch.Kind.String(),
		"reference", fmt.Sprint(w.mismatch.Ref),
		"library", fmt.Sprint(w.mismatch.Lib),
	)
	return false, w.mismatch
}

// Compare is Comparator.Compare with the default logger.
func Compare(ref, lib []svd.Peripheral) (bool, *Mismatch) {
	return New(nil).Compare(ref, lib)
}

type walker struct {
	path     []Segment
	mismatch *Mismatch
}

func (w *walker) push(kind, name string, index int) {
	w.path = append(w.path, Segment{Kind: kind, Name: name, Index: index})
}

func (w *walker) pop() {
	w.path = w.path[:len(w.path)-1]
}

func (w *walker) fail(attribute string, kind MismatchKind, ref, lib any) bool {
	w.mismatch = &Mismatch{
		Path:      append([]Segment(nil), w.path...),
		Attribute: attribute,
		Kind:      kind,
		Ref:       ref,
		Lib:       lib,
	}
	return false
}

func same[T comparable](w *walker, attribute string, ref, lib T) bool {
	if ref == lib {
		return true
	}
	return w.fail(attribute, KindValue, ref, lib)
}

func (w *walker) count(list string, ref, lib int) bool {
	if ref == lib {
		return true
	}
	return w.fail(list, KindCount, ref, lib)
}

// each pairs two lists by index after checking their lengths.
func each[T any](w *walker, list string, ref, lib []T, pair func(i int, a, b *T) bool) bool {
	if !w.count(list, len(ref), len(lib)) {
		return false
	}
	for i := range ref {
		if !pair(i, &ref[i], &lib[i]) {
			return false
		}
	}
	return true
}

func (w *walker) peripherals(ref, lib []svd.Peripheral) bool {
	return each(w, "peripherals", ref, lib, func(i int, a, b *svd.Peripheral) bool {
		w.push("peripheral", a.Name, i)
		defer w.pop()
		return w.peripheral(a, b)
	})
}

func (w *walker) peripheral(a, b *svd.Peripheral) bool {
	return same(w, "name", a.Name, b.Name) &&
		same(w, "version", a.Version, b.Version) &&
		same(w, "alternatePeripheral", a.AlternatePeripheral, b.AlternatePeripheral) &&
		same(w, "groupName", a.GroupName, b.GroupName) &&
		same(w, "prependToName", a.PrependToName, b.PrependToName) &&
		same(w, "appendToName", a.AppendToName, b.AppendToName) &&
		same(w, "headerStructName", a.HeaderStructName, b.HeaderStructName) &&
		same(w, "baseAddress", hex(a.BaseAddress), hex(b.BaseAddress)) &&
		same(w, "size", a.Size, b.Size) &&
		same(w, "access", a.Access, b.Access) &&
		same(w, "protection", a.Protection, b.Protection) &&
		w.addressBlocks(a.AddressBlocks, b.AddressBlocks) &&
		w.interrupts(a.Interrupts, b.Interrupts) &&
		w.elements(a.Elements, b.Elements)
}

func (w *walker) addressBlocks(ref, lib []svd.AddressBlock) bool {
	return each(w, "addressBlocks", ref, lib, func(i int, a, b *svd.AddressBlock) bool {
		w.push("addressBlock", "", i)
		defer w.pop()
		return same(w, "offset", hex(a.Offset), hex(b.Offset)) &&
			same(w, "size", hex(a.Size), hex(b.Size)) &&
			same(w, "usage", a.Usage, b.Usage) &&
			same(w, "protection", a.Protection, b.Protection)
	})
}

func (w *walker) interrupts(ref, lib []svd.Interrupt) bool {
	return each(w, "interrupts", ref, lib, func(i int, a, b *svd.Interrupt) bool {
		w.push("interrupt", a.Name, i)
		defer w.pop()
		return same(w, "name", a.Name, b.Name) &&
			same(w, "value", a.Value, b.Value)
	})
}

func (w *walker) elements(ref, lib []svd.Element) bool {
	return each(w, "registersClusters", ref, lib, func(i int, a, b *svd.Element) bool {
		w.push(a.Kind().String(), a.Name(), i)
		defer w.pop()

		if a.Kind() != b.Kind() {
			return w.fail("type", KindType, a.Kind(), b.Kind())
		}
		switch a.Kind() {
		case svd.KindRegister:
			return w.register(a.Register, b.Register)
		case svd.KindCluster:
			return w.cluster(a.Cluster, b.Cluster)
		}
		// Neither side holds exactly one of register and cluster.
		return w.fail("type", KindType, a.Kind(), b.Kind())
	})
}

func (w *walker) register(a, b *svd.Register) bool {
	return same(w, "name", a.Name, b.Name) &&
		same(w, "displayName", a.DisplayName, b.DisplayName) &&
		same(w, "alternateGroup", a.AlternateGroup, b.AlternateGroup) &&
		same(w, "alternateRegister", a.AlternateRegister, b.AlternateRegister) &&
		same(w, "addressOffset", hex(a.AddressOffset), hex(b.AddressOffset)) &&
		same(w, "dataType", a.DataType, b.DataType) &&
		same(w, "modifiedWriteValues", a.ModifiedWriteValues, b.ModifiedWriteValues) &&
		same(w, "readAction", a.ReadAction, b.ReadAction) &&
		same(w, "size", a.Size, b.Size) &&
		same(w, "access", a.Access, b.Access) &&
		same(w, "protection", a.Protection, b.Protection) &&
		same(w, "baseAddress", hex(a.BaseAddress), hex(b.BaseAddress)) &&
		w.fields(a.Fields, b.Fields)
}

func (w *walker) cluster(a, b *svd.Cluster) bool {
	return same(w, "name", a.Name, b.Name) &&
		same(w, "alternateCluster", a.AlternateCluster, b.AlternateCluster) &&
		same(w, "headerStructName", a.HeaderStructName, b.HeaderStructName) &&
		same(w, "addressOffset", hex(a.AddressOffset), hex(b.AddressOffset)) &&
		same(w, "size", a.Size, b.Size) &&
		same(w, "access", a.Access, b.Access) &&
		same(w, "protection", a.Protection, b.Protection) &&
		same(w, "baseAddress", hex(a.BaseAddress), hex(b.BaseAddress)) &&
		w.elements(a.Elements, b.Elements)
}

func (w *walker) fields(ref, lib []svd.Field) bool {
	return each(w, "fields", ref, lib, func(i int, a, b *svd.Field) bool {
		w.push("field", a.Name, i)
		defer w.pop()
		return same(w, "name", a.Name, b.Name) &&
			same(w, "lsb", a.LSB(), b.LSB()) &&
			same(w, "msb", a.MSB(), b.MSB()) &&
			same(w, "bitOffset", a.BitOffset, b.BitOffset) &&
			same(w, "bitWidth", a.BitWidth, b.BitWidth) &&
			same(w, "bitRange", a.BitRange(), b.BitRange()) &&
			same(w, "modifiedWriteValues", a.ModifiedWriteValues, b.ModifiedWriteValues) &&
			same(w, "readAction", a.ReadAction, b.ReadAction) &&
			same(w, "access", a.Access, b.Access) &&
			w.enumContainers(a.EnumeratedValueContainers, b.EnumeratedValueContainers)
	})
}

func (w *walker) enumContainers(ref, lib []svd.EnumeratedValueContainer) bool {
	return each(w, "enumeratedValueContainers", ref, lib, func(i int, a, b *svd.EnumeratedValueContainer) bool {
		w.push("enumeratedValues", a.Name, i)
		defer w.pop()
		return same(w, "name", a.Name, b.Name) &&
			same(w, "headerEnumName", a.HeaderEnumName, b.HeaderEnumName) &&
			same(w, "usage", a.Usage, b.Usage) &&
			w.enumeratedValues(a.Values, b.Values)
	})
}

func (w *walker) enumeratedValues(ref, lib []svd.EnumeratedValue) bool {
	return each(w, "enumeratedValues", ref, lib, func(i int, a, b *svd.EnumeratedValue) bool {
		w.push("enumeratedValue", a.Name, i)
		defer w.pop()
		return same(w, "name", a.Name, b.Name) &&
			same(w, "value", a.Value, b.Value) &&
			same(w, "isDefault", a.IsDefault, b.IsDefault)
	})
}

// address prints as hexadecimal in mismatch reports.
type address uint64

func (a address) String() string { return fmt.Sprintf("0x%08X", uint64(a)) }

func hex(v uint64) address { return address(v) }
