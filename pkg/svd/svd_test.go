package svd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDefault(t *testing.T) {
	values := []EnumeratedValue{
		{Name: "A", Value: 0},
		{Name: "X", IsDefault: true},
		{Name: "B", Value: 1},
	}

	got, err := ExpandDefault(values, 2)
	require.NoError(t, err)
	SortEnumeratedValues(got)

	assert.Equal(t, []EnumeratedValue{
		{Name: "A", Value: 0},
		{Name: "B", Value: 1},
		{Name: "X_2", Value: 2},
		{Name: "X_3", Value: 3},
	}, got)
}

func TestExpandDefaultCoversEveryPattern(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		explicit []uint64
	}{
		{name: "single bit, nothing explicit", width: 1},
		{name: "four bits, sparse", width: 4, explicit: []uint64{0, 3, 15}},
		{name: "three bits, all explicit", width: 3, explicit: []uint64{0, 1, 2, 3, 4, 5, 6, 7}},
		{name: "zero width", width: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := []EnumeratedValue{{Name: "DEF", IsDefault: true}}
			for _, v := range tt.explicit {
				values = append(values, EnumeratedValue{Name: "E", Value: v})
			}

			got, err := ExpandDefault(values, tt.width)
			require.NoError(t, err)
			require.Len(t, got, 1<<tt.width)

			seen := make(map[uint64]int)
			for _, v := range got {
				assert.False(t, v.IsDefault, "default entry must be dropped")
				seen[v.Value]++
			}
			for v := uint64(0); v < 1<<tt.width; v++ {
				assert.Equal(t, 1, seen[v], "value %d", v)
			}
		})
	}
}

func TestExpandDefaultWithoutDefault(t *testing.T) {
	values := []EnumeratedValue{{Name: "ON", Value: 1}}

	got, err := ExpandDefault(values, 8)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestExpandDefaultTooWide(t *testing.T) {
	values := []EnumeratedValue{{Name: "ANY", IsDefault: true}}

	_, err := ExpandDefault(values, MaxDefaultExpansionWidth+1)
	assert.True(t, errors.Is(err, ErrDefaultTooWide))
}

func TestFieldDerivedBits(t *testing.T) {
	f := Field{Name: "MODE", BitOffset: 4, BitWidth: 3}

	assert.Equal(t, 4, f.LSB())
	assert.Equal(t, 6, f.MSB())
	assert.Equal(t, BitRange{MSB: 6, LSB: 4}, f.BitRange())
	assert.Equal(t, "[6:4]", f.BitRange().String())
	assert.Equal(t, 3, f.BitRange().Width())
}

func TestResolveAddressesNested(t *testing.T) {
	reg := &Register{Name: "DATA", AddressOffset: 0x4}
	inner := &Cluster{Name: "INNER", AddressOffset: 0x20, Elements: []Element{RegisterElement(reg)}}
	outer := &Cluster{Name: "OUTER", AddressOffset: 0x100, Elements: []Element{ClusterElement(inner)}}
	top := &Register{Name: "CTRL", AddressOffset: 0x8}
	p := Peripheral{
		Name:        "DMA",
		BaseAddress: 0x40000000,
		Elements:    []Element{ClusterElement(outer), RegisterElement(top)},
	}

	p.ResolveAddresses()

	assert.Equal(t, uint64(0x40000100), outer.BaseAddress)
	assert.Equal(t, uint64(0x40000120), inner.BaseAddress)
	assert.Equal(t, uint64(0x40000124), reg.BaseAddress)
	assert.Equal(t, uint64(0x40000008), top.BaseAddress)
	assert.Equal(t, 2, p.CountRegisters())
}

func TestSortPeripherals(t *testing.T) {
	ps := []Peripheral{
		{Name: "UART1", BaseAddress: 0x4000_1000},
		{Name: "TIMER", BaseAddress: 0x4000_0000},
		{Name: "UART0", BaseAddress: 0x4000_1000},
	}

	SortPeripherals(ps)

	names := []string{ps[0].Name, ps[1].Name, ps[2].Name}
	assert.Equal(t, []string{"TIMER", "UART0", "UART1"}, names)
}

func TestSortElements(t *testing.T) {
	mk := func() []Element {
		return []Element{
			RegisterElement(&Register{Name: "B", AddressOffset: 4, BaseAddress: 0x14, AlternateGroup: "G"}),
			ClusterElement(&Cluster{Name: "C", AddressOffset: 8, BaseAddress: 0x10}),
			RegisterElement(&Register{Name: "A", AddressOffset: 4, BaseAddress: 0x14}),
			RegisterElement(&Register{Name: "Z", AddressOffset: 4, BaseAddress: 0x14, AlternateGroup: "F"}),
		}
	}
	names := func(es []Element) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.Name())
		}
		return out
	}

	tests := []struct {
		name  string
		order ElementOrder
		want  []string
	}{
		{name: "by base address", order: ByBaseAddress, want: []string{"C", "A", "Z", "B"}},
		{name: "by address offset", order: ByAddressOffset, want: []string{"A", "B", "Z", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := mk()
			SortElements(es, tt.order)
			assert.Equal(t, tt.want, names(es))
		})
	}
}

func TestSortFields(t *testing.T) {
	fs := []Field{
		{Name: "HI", BitOffset: 8, BitWidth: 8},
		{Name: "LO_B", BitOffset: 0, BitWidth: 4},
		{Name: "LO_A", BitOffset: 0, BitWidth: 4},
	}

	SortFields(fs)

	assert.Equal(t, "LO_A", fs[0].Name)
	assert.Equal(t, "LO_B", fs[1].Name)
	assert.Equal(t, "HI", fs[2].Name)
}

func TestElementKind(t *testing.T) {
	assert.Equal(t, KindRegister, RegisterElement(&Register{}).Kind())
	assert.Equal(t, KindCluster, ClusterElement(&Cluster{}).Kind())
	assert.Equal(t, KindInvalid, Element{}.Kind())
	assert.Equal(t, "invalid", Element{}.Kind().String())
}

func TestTokenStrings(t *testing.T) {
	assert.Equal(t, "read-only", ReadOnly.String())
	assert.Equal(t, "non-secure", NonSecure.String())
	assert.Equal(t, "oneToClear", WriteOneToClear.String())
	assert.Equal(t, "modifyExternal", ReadModifyExternal.String())
	assert.Equal(t, "uint16_t *", Uint16Ptr.String())
	assert.Equal(t, "token(42)", AccessType(42).String())
}

func TestDataTypeByName(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
		ok   bool
	}{
		{in: "", want: DataTypeNone, ok: true},
		{in: "uint32_t", want: Uint32, ok: true},
		{in: "UINT8_T", want: Uint8, ok: true},
		{in: "int64_t *", want: Int64Ptr, ok: true},
		{in: "float", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := DataTypeByName(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
