package svdconv

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

func parseText(t *testing.T, lines ...string) ([]svd.Peripheral, bool, error) {
	t.Helper()
	p, err := NewTextParser(discardLogger())
	require.NoError(t, err)
	return p.Parse([]byte(strings.Join(lines, "\n") + "\n"))
}

var peripheralHeader = []string{
	"=== Peripheral P ===",
	"  baseAddress: 0x1000",
	"  sizeEffective: 32",
	"  access: READ_WRITE",
	"  protection: UNDEF",
	"  resetValue: 0",
	"  resetMask: 0xFFFFFFFF",
}

func register(indent, name, offset string) []string {
	return []string{
		indent + "=== Register " + name + " ===",
		indent + "  addressOffset: " + offset,
		indent + "  modifiedWriteValues: modify",
		indent + "  readAction: UNDEF",
		indent + "  sizeEffective: 32",
		indent + "  access: READ_WRITE",
		indent + "  protection: UNDEF",
		indent + "  resetValue: 0",
		indent + "  resetMask: 0xFFFFFFFF",
	}
}

func cluster(indent, name, offset string) []string {
	return []string{
		indent + "=== Cluster " + name + " ===",
		indent + "  addressOffset: " + offset,
		indent + "  sizeEffective: 32",
		indent + "  access: READ_WRITE",
		indent + "  protection: UNDEF",
		indent + "  resetValue: 0",
		indent + "  resetMask: 0xFFFFFFFF",
	}
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestTextNestedClusters(t *testing.T) {
	ps, ok, err := parseText(t, concat(
		peripheralHeader,
		cluster("  ", "OUTER", "0x100"),
		cluster("    ", "INNER", "0x20"),
		register("      ", "DEEP", "0x4"),
		// back at cluster OUTER depth: sibling of INNER
		register("    ", "SIDE", "0x0"),
		// back at peripheral depth: sibling of OUTER
		register("  ", "TOP", "0x8"),
	)...)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, ps, 1)

	es := ps[0].Elements
	require.Len(t, es, 2)
	assert.Equal(t, "TOP", es[0].Name())
	assert.Equal(t, uint64(0x1008), es[0].BaseAddress())

	outer := es[1].Cluster
	require.NotNil(t, outer)
	assert.Equal(t, uint64(0x1100), outer.BaseAddress)
	require.Len(t, outer.Elements, 2)
	assert.Equal(t, "SIDE", outer.Elements[0].Name())
	assert.Equal(t, uint64(0x1100), outer.Elements[0].BaseAddress())

	inner := outer.Elements[1].Cluster
	require.NotNil(t, inner)
	assert.Equal(t, uint64(0x1120), inner.BaseAddress)
	require.Len(t, inner.Elements, 1)
	assert.Equal(t, uint64(0x1124), inner.Elements[0].BaseAddress())
}

func TestTextOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantOK    bool
		wantUnmap string
	}{
		{
			name:  "summary only",
			lines: []string{"Found 0 Error(s) and 0 Warning(s)"},
		},
		{
			name:  "not svdconv output",
			lines: []string{"this is not svdconv output at all"},
		},
		{
			name:  "cut off before the first peripheral",
			lines: []string{"SVDConv - CMSIS-SVD File Converter", "  debug output follows"},
		},
		{
			name:   "separator without peripherals",
			lines:  []string{"SVDConv - CMSIS-SVD File Converter", "^^^^^^^^", "Found 0 Error(s) and 0 Warning(s)"},
			wantOK: true,
		},
		{
			name:  "tool errors",
			lines: concat(peripheralHeader, []string{"Found 1 Error(s) and 0 Warning(s)"}),
		},
		{
			name:  "odd indentation",
			lines: concat(peripheralHeader, []string{"   version: 1"}),
		},
		{
			name:  "tab indentation",
			lines: concat(peripheralHeader, []string{"\tversion: 1"}),
		},
		{
			name:  "indentation jumps two levels",
			lines: concat(peripheralHeader, []string{"      version: 1"}),
		},
		{
			name:  "field directly under a peripheral",
			lines: concat(peripheralHeader, []string{"  === Field F ==="}),
		},
		{
			name:  "unknown section kind",
			lines: concat(peripheralHeader, []string{"  === Widget W ==="}),
		},
		{
			name:  "register at depth zero",
			lines: concat([]string{"^^^^^^^^"}, register("", "R", "0")),
		},
		{
			name:  "missing required attribute",
			lines: peripheralHeader[:len(peripheralHeader)-1],
		},
		{
			name:  "number that does not parse",
			lines: concat(peripheralHeader[:1], []string{"  baseAddress: 0xZZ"}, peripheralHeader[2:]),
		},
		{
			name:  "indented separator",
			lines: concat(peripheralHeader, []string{"  ^^^^^^^^"}),
		},
		{
			name:  "unparseable line",
			lines: concat(peripheralHeader, []string{"  === Register ==="[:10]}),
		},
		{
			name:      "unmapped protection",
			lines:     concat(peripheralHeader[:4], []string{"  protection: MAYBE"}, peripheralHeader[5:]),
			wantUnmap: "protection",
		},
		{
			name:   "unknown attribute is ignored",
			lines:  concat(peripheralHeader, []string{"  description: General purpose I/O"}),
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, ok, err := parseText(t, tt.lines...)

			if tt.wantUnmap != "" {
				var tokenErr *UnmappedTokenError
				require.True(t, errors.As(err, &tokenErr), "got %v", err)
				assert.Equal(t, tt.wantUnmap, tokenErr.Vocabulary)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Nil(t, ps)
			}
		})
	}
}

func TestTextEnumeratedValues(t *testing.T) {
	ps, ok, err := parseText(t, concat(
		peripheralHeader,
		register("  ", "R", "0"),
		[]string{
			"    === Field F ===",
			"      bitOffset: 4",
			"      bitWidth: 2",
			"      access: READ_ONLY",
			"      modifiedWriteValues: modify",
			"      readAction: CLEAR",
			"      === EnumContainer ===",
			"        name: STATE",
			"        usage: READ",
			"        === EnumeratedValue IDLE ===",
			"          value: 0b00",
			"        === EnumeratedValue ===",
			"          name: RESERVED",
			"          isDefault: true",
		},
	)...)
	require.NoError(t, err)
	require.True(t, ok)

	f := ps[0].Elements[0].Register.Fields[0]
	assert.Equal(t, svd.BitRange{MSB: 5, LSB: 4}, f.BitRange())
	assert.Equal(t, svd.ReadClear, f.ReadAction)

	ec := f.EnumeratedValueContainers[0]
	assert.Equal(t, "STATE", ec.Name)
	assert.Equal(t, svd.EnumRead, ec.Usage)
	assert.Equal(t, []svd.EnumeratedValue{
		{Name: "IDLE", Value: 0},
		{Name: "RESERVED_1", Value: 1},
		{Name: "RESERVED_2", Value: 2},
		{Name: "RESERVED_3", Value: 3},
	}, ec.Values)
}

func TestLexLine(t *testing.T) {
	g, err := newLineGrammar()
	require.NoError(t, err)

	tests := []struct {
		raw  string
		want lexedLine
	}{
		{
			raw:  "^^^^^^^^^^",
			want: lexedLine{number: 1, kind: lineSeparator},
		},
		{
			raw:  "  === Register CTRL ===",
			want: lexedLine{number: 1, depth: 1, kind: lineSection, section: "Register", name: "CTRL"},
		},
		{
			raw:  "    === AddressBlock ===",
			want: lexedLine{number: 1, depth: 2, kind: lineSection, section: "AddressBlock"},
		},
		{
			raw:  "      dataType: uint8_t *",
			want: lexedLine{number: 1, depth: 3, kind: lineAttribute, key: "dataType", value: "uint8_t *"},
		},
		{
			raw:  "  headerEnumName:",
			want: lexedLine{number: 1, depth: 1, kind: lineAttribute, key: "headerEnumName"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := g.lex(1, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
