package compare

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
	"github.com/OpenTraceLab/svdparity/pkg/svdconv"
)

func quiet() *Comparator {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// device builds a fresh forest on every call so tests can mutate it.
func device() []svd.Peripheral {
	ctrl := &svd.Register{
		Name:          "CTRL",
		AddressOffset: 0,
		Size:          32,
		Access:        svd.ReadWrite,
		ResetMask:     0xFFFFFFFF,
		Fields: []svd.Field{
			{
				Name:      "EN",
				BitOffset: 0,
				BitWidth:  1,
				Access:    svd.ReadWrite,
				EnumeratedValueContainers: []svd.EnumeratedValueContainer{{
					Usage: svd.EnumReadWrite,
					Values: []svd.EnumeratedValue{
						{Name: "OFF", Value: 0},
						{Name: "ON", Value: 1},
					},
				}},
			},
			{Name: "MODE", BitOffset: 1, BitWidth: 3, Access: svd.ReadWrite},
		},
	}
	cnt := &svd.Register{Name: "CNT", AddressOffset: 4, Size: 16, Access: svd.ReadOnly}
	ch := &svd.Cluster{
		Name:          "CH",
		AddressOffset: 0x10,
		Size:          32,
		Access:        svd.ReadWrite,
		Elements:      []svd.Element{svd.RegisterElement(cnt)},
	}

	ps := []svd.Peripheral{
		{
			Name:          "TIMER0",
			BaseAddress:   0x40010000,
			Size:          32,
			Access:        svd.ReadWrite,
			AddressBlocks: []svd.AddressBlock{{Offset: 0, Size: 0x100, Usage: svd.BlockRegisters}},
			Interrupts:    []svd.Interrupt{{Name: "TIMER0", Value: 21}},
			Elements:      []svd.Element{svd.RegisterElement(ctrl), svd.ClusterElement(ch)},
		},
	}
	for i := range ps {
		ps[i].ResolveAddresses()
	}
	return ps
}

func TestCompareEqual(t *testing.T) {
	ok, m := quiet().Compare(device(), device())
	assert.True(t, ok)
	assert.Nil(t, m)
}

func TestCompareEmptyForests(t *testing.T) {
	ok, m := quiet().Compare(nil, []svd.Peripheral{})
	assert.True(t, ok)
	assert.Nil(t, m)
}

func TestCompareMismatches(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(ps []svd.Peripheral) []svd.Peripheral
		location  string
		attribute string
		kind      MismatchKind
	}{
		{
			name:      "peripheral count",
			mutate:    func(ps []svd.Peripheral) []svd.Peripheral { return append(ps, svd.Peripheral{Name: "EXTRA"}) },
			location:  "device",
			attribute: "peripherals",
			kind:      KindCount,
		},
		{
			name: "peripheral group name",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].GroupName = "TIM"
				return ps
			},
			location:  "peripheral TIMER0",
			attribute: "groupName",
		},
		{
			name: "peripheral protection comes before address blocks",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Protection = svd.Secure
				ps[0].AddressBlocks = nil
				return ps
			},
			location:  "peripheral TIMER0",
			attribute: "protection",
		},
		{
			name: "address block count",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].AddressBlocks = append(ps[0].AddressBlocks, svd.AddressBlock{Offset: 0x100})
				return ps
			},
			location:  "peripheral TIMER0",
			attribute: "addressBlocks",
			kind:      KindCount,
		},
		{
			name: "address block usage",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].AddressBlocks[0].Usage = svd.BlockReserved
				return ps
			},
			location:  "peripheral TIMER0 > addressBlock #0",
			attribute: "usage",
		},
		{
			name: "interrupts before registers",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Interrupts[0].Value = 22
				ps[0].Elements = nil
				return ps
			},
			location:  "peripheral TIMER0 > interrupt TIMER0",
			attribute: "value",
		},
		{
			name: "register and cluster swapped",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				es := ps[0].Elements
				es[0], es[1] = es[1], es[0]
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL",
			attribute: "type",
			kind:      KindType,
		},
		{
			name: "register data type",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[0].Register.DataType = svd.Uint32
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL",
			attribute: "dataType",
		},
		{
			name: "register scalars before fields",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[0].Register.ReadAction = svd.ReadClear
				ps[0].Elements[0].Register.Fields = nil
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL",
			attribute: "readAction",
		},
		{
			name: "field count",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				r := ps[0].Elements[0].Register
				r.Fields = r.Fields[:1]
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL",
			attribute: "fields",
			kind:      KindCount,
		},
		{
			name: "field width shows as msb first",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[0].Register.Fields[1].BitWidth = 2
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL > field MODE",
			attribute: "msb",
		},
		{
			name: "enumerated value",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[0].Register.Fields[0].EnumeratedValueContainers[0].Values[1].Name = "ENABLED"
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL > field EN > enumeratedValues #0 > enumeratedValue ON",
			attribute: "name",
		},
		{
			name: "container usage",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[0].Register.Fields[0].EnumeratedValueContainers[0].Usage = svd.EnumRead
				return ps
			},
			location:  "peripheral TIMER0 > register CTRL > field EN > enumeratedValues #0",
			attribute: "usage",
		},
		{
			name: "nested register base address",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[1].Cluster.Elements[0].Register.BaseAddress++
				return ps
			},
			location:  "peripheral TIMER0 > cluster CH > register CNT",
			attribute: "baseAddress",
		},
		{
			name: "cluster children count",
			mutate: func(ps []svd.Peripheral) []svd.Peripheral {
				ps[0].Elements[1].Cluster.Elements = nil
				return ps
			},
			location:  "peripheral TIMER0 > cluster CH",
			attribute: "registersClusters",
			kind:      KindCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, m := quiet().Compare(device(), tt.mutate(device()))
			require.False(t, ok)
			require.NotNil(t, m)
			assert.Equal(t, tt.location, m.Location())
			assert.Equal(t, tt.attribute, m.Attribute)
			assert.Equal(t, tt.kind, m.Kind)
		})
	}
}

func TestCompareRejectsInvalidElements(t *testing.T) {
	tests := map[string]svd.Element{
		"empty":         {},
		"both variants": {Register: &svd.Register{Name: "R"}, Cluster: &svd.Cluster{Name: "C"}},
	}
	for name, invalid := range tests {
		t.Run(name, func(t *testing.T) {
			ref, lib := device(), device()
			ref[0].Elements[0] = invalid
			lib[0].Elements[0] = invalid

			ok, m := quiet().Compare(ref, lib)
			require.False(t, ok)
			require.NotNil(t, m)
			assert.Equal(t, KindType, m.Kind)
			assert.Equal(t, "peripheral TIMER0 > invalid #0", m.Location())
			assert.Equal(t, svd.KindInvalid, m.Ref)
		})
	}
}

func TestCompareIgnoresResetValues(t *testing.T) {
	lib := device()
	lib[0].ResetValue = 0xDEAD
	lib[0].ResetMask = 0
	lib[0].Elements[0].Register.ResetValue = 1
	lib[0].Elements[1].Cluster.ResetMask = 0xFF
	lib[0].DisableCondition = "CTRL.EN == 0"

	ok, m := quiet().Compare(device(), lib)
	assert.True(t, ok, "unexpected mismatch %v", m)
}

func TestCompareIsDeterministic(t *testing.T) {
	lib := device()
	lib[0].Elements[0].Register.Fields[1].Access = svd.ReadOnly
	lib[0].Elements[1].Cluster.Name = "CHANNEL"

	_, first := quiet().Compare(device(), lib)
	_, second := quiet().Compare(device(), lib)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, "field MODE", first.Path[len(first.Path)-1].String())
}

func TestMismatchString(t *testing.T) {
	lib := device()
	lib[0].BaseAddress = 0x40020000

	var buf bytes.Buffer
	c := New(slog.New(slog.NewTextHandler(&buf, nil)))
	ok, m := c.Compare(device(), lib)
	require.False(t, ok)

	assert.Equal(t, "peripheral TIMER0: baseAddress mismatch: 0x40010000 (reference) != 0x40020000 (library)", m.String())
	assert.Contains(t, buf.String(), "models differ")
	assert.Contains(t, buf.String(), "baseAddress")
}

func TestCompareReferenceOutputWithItself(t *testing.T) {
	for _, fixture := range []struct {
		format svdconv.Format
		file   string
	}{
		{svdconv.FormatJSON, "../svdconv/testdata/peripherals.json"},
		{svdconv.FormatText, "../svdconv/testdata/peripherals.txt"},
	} {
		t.Run(fixture.format.String(), func(t *testing.T) {
			data, err := os.ReadFile(fixture.file)
			require.NoError(t, err)

			p, err := svdconv.NewParser(fixture.format, nil)
			require.NoError(t, err)
			a, ok, err := p.Parse(data)
			require.NoError(t, err)
			require.True(t, ok)
			b, _, _ := p.Parse(data)

			equal, m := quiet().Compare(a, b)
			assert.True(t, equal, "mismatch: %v", m)
		})
	}
}
