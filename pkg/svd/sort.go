package svd

import (
	"cmp"
	"slices"
)

// ElementOrder selects the sort key for register and cluster children.
type ElementOrder int

const (
	// ByBaseAddress sorts by (base address, alternate group, name). Registers
	// without an alternate group sort before those with one at the same address.
	ByBaseAddress ElementOrder = iota
	// ByAddressOffset sorts by (address offset, name).
	ByAddressOffset
)

// SortPeripherals orders peripherals by (base address, name).
func SortPeripherals(ps []Peripheral) {
	slices.SortStableFunc(ps, func(a, b Peripheral) int {
		return cmp.Or(
			cmp.Compare(a.BaseAddress, b.BaseAddress),
			cmp.Compare(a.Name, b.Name),
		)
	})
}

// SortAddressBlocks orders address blocks by offset.
func SortAddressBlocks(bs []AddressBlock) {
	slices.SortStableFunc(bs, func(a, b AddressBlock) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
}

// SortInterrupts orders interrupts by vector number.
func SortInterrupts(is []Interrupt) {
	slices.SortStableFunc(is, func(a, b Interrupt) int {
		return cmp.Compare(a.Value, b.Value)
	})
}

// SortElements orders the direct children of a peripheral or cluster.
func SortElements(es []Element, order ElementOrder) {
	if order == ByAddressOffset {
		slices.SortStableFunc(es, func(a, b Element) int {
			return cmp.Or(
				cmp.Compare(a.AddressOffset(), b.AddressOffset()),
				cmp.Compare(a.Name(), b.Name()),
			)
		})
		return
	}
	slices.SortStableFunc(es, func(a, b Element) int {
		return cmp.Or(
			cmp.Compare(a.BaseAddress(), b.BaseAddress()),
			compareAlternateGroup(a, b),
			cmp.Compare(a.Name(), b.Name()),
		)
	})
}

func compareAlternateGroup(a, b Element) int {
	ga, oka := a.alternateGroup()
	gb, okb := b.alternateGroup()
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return -1
	case !okb:
		return 1
	}
	return cmp.Compare(ga, gb)
}

// SortFields orders fields by (lsb, name).
func SortFields(fs []Field) {
	slices.SortStableFunc(fs, func(a, b Field) int {
		return cmp.Or(
			cmp.Compare(a.LSB(), b.LSB()),
			cmp.Compare(a.Name, b.Name),
		)
	})
}

// SortEnumeratedValues orders enumerated values by value.
func SortEnumeratedValues(vs []EnumeratedValue) {
	slices.SortStableFunc(vs, func(a, b EnumeratedValue) int {
		return cmp.Compare(a.Value, b.Value)
	})
}

// SortTree sorts ps and every register and cluster list below them with order.
// Address blocks, interrupts, fields and enumerated values are sorted too.
func SortTree(ps []Peripheral, order ElementOrder) {
	for i := range ps {
		SortAddressBlocks(ps[i].AddressBlocks)
		SortInterrupts(ps[i].Interrupts)
		sortElementTree(ps[i].Elements, order)
	}
	SortPeripherals(ps)
}

func sortElementTree(es []Element, order ElementOrder) {
	for _, e := range es {
		switch e.Kind() {
		case KindRegister:
			SortFields(e.Register.Fields)
			for i := range e.Register.Fields {
				for j := range e.Register.Fields[i].EnumeratedValueContainers {
					SortEnumeratedValues(e.Register.Fields[i].EnumeratedValueContainers[j].Values)
				}
			}
		case KindCluster:
			sortElementTree(e.Cluster.Elements, order)
		}
	}
	SortElements(es, order)
}
