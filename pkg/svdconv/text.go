package svdconv

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// Section kinds of the text output.
const (
	sectionPeripheral      = "Peripheral"
	sectionAddressBlock    = "AddressBlock"
	sectionInterrupt       = "Interrupt"
	sectionRegister        = "Register"
	sectionCluster         = "Cluster"
	sectionField           = "Field"
	sectionEnumContainer   = "EnumContainer"
	sectionEnumeratedValue = "EnumeratedValue"
)

// allowedChildren lists the section kinds each section may contain.
var allowedChildren = map[string][]string{
	sectionPeripheral:      {sectionAddressBlock, sectionInterrupt, sectionRegister, sectionCluster},
	sectionCluster:         {sectionRegister, sectionCluster},
	sectionRegister:        {sectionField},
	sectionField:           {sectionEnumContainer},
	sectionEnumContainer:   {sectionEnumeratedValue},
	sectionAddressBlock:    nil,
	sectionInterrupt:       nil,
	sectionEnumeratedValue: nil,
}

// TextParser reads the indented free-text debug output of svdconv.
//
// Every section starts with a "=== Kind Name ===" marker. Its attributes and
// child sections sit one IndentUnit deeper; the section ends at the first line
// that is not deeper than its marker. Peripherals are separated by a line of
// '^' characters. Everything before the first separator or peripheral marker
// is banner text and ignored, as is the run summary line. Output without any
// separator or peripheral marker has no model; a lone separator is a device
// without peripherals.
type TextParser struct {
	grammar *lineGrammar
	logger  *slog.Logger
}

// NewTextParser returns a TextParser. A nil logger uses slog.Default.
func NewTextParser(logger *slog.Logger) (*TextParser, error) {
	grammar, err := newLineGrammar()
	if err != nil {
		return nil, err
	}
	return &TextParser{grammar: grammar, logger: orDefault(logger)}, nil
}

// Parse implements Parser.
func (p *TextParser) Parse(output []byte) ([]svd.Peripheral, bool, error) {
	ps, err := p.parse(output)
	return absorb(p.logger, FormatText, ps, err)
}

func (p *TextParser) parse(output []byte) ([]svd.Peripheral, error) {
	if err := checkSummary(output); err != nil {
		return nil, err
	}

	lines, err := p.lexLines(output)
	if err != nil {
		return nil, err
	}

	r := &sectionReader{lines: lines}
	sections, err := r.readDocument()
	if err != nil {
		return nil, err
	}

	peripherals := make([]svd.Peripheral, 0, len(sections))
	for _, s := range sections {
		b := &sectionBuilder{s: s}
		peripheral := b.peripheral()
		if b.err != nil {
			return nil, b.err
		}
		peripherals = append(peripherals, peripheral)
	}
	svd.SortPeripherals(peripherals)

	p.logger.Debug("parsed reference text output", "peripherals", len(peripherals))
	return peripherals, nil
}

func (p *TextParser) lexLines(output []byte) ([]lexedLine, error) {
	var lines []lexedLine
	inBody := false

	sc := bufio.NewScanner(bytes.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	number := 0
	for sc.Scan() {
		number++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(raw) == "" || isSummaryLine(raw) {
			continue
		}
		if !inBody {
			if !isBodyStart(raw) {
				continue
			}
			inBody = true
		}
		l, err := p.grammar.lex(number, raw)
		if err != nil {
			return nil, err
		}
		if l.kind == lineSeparator && l.depth != 0 {
			return nil, malformed("line %d: indented separator", number)
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, malformed("%v", err)
	}
	if !inBody {
		return nil, malformed("no peripheral section")
	}
	return lines, nil
}

func isBodyStart(raw string) bool {
	return strings.HasPrefix(raw, "^^^") || strings.HasPrefix(raw, "=== "+sectionPeripheral+" ")
}

// section is one marker with everything indented below it.
type section struct {
	kind     string
	name     string
	line     int
	attrs    map[string]string
	children []*section
}

// sectionReader rebuilds the section tree from indentation depth.
type sectionReader struct {
	lines []lexedLine
	pos   int
}

func (r *sectionReader) readDocument() ([]*section, error) {
	var peripherals []*section
	for r.pos < len(r.lines) {
		l := r.lines[r.pos]
		switch {
		case l.kind == lineSeparator:
			r.pos++
		case l.kind == lineSection && l.depth == 0:
			if l.section != sectionPeripheral {
				return nil, malformed("line %d: %s section outside a peripheral", l.number, l.section)
			}
			s, err := r.readSection(0)
			if err != nil {
				return nil, err
			}
			peripherals = append(peripherals, s)
		default:
			return nil, malformed("line %d: unexpected line at depth %d", l.number, l.depth)
		}
	}
	return peripherals, nil
}

// readSection consumes the marker at r.pos and every line deeper than depth.
// A marker at depth or shallower, including a sibling cluster, ends the
// section without being consumed.
func (r *sectionReader) readSection(depth int) (*section, error) {
	head := r.lines[r.pos]
	r.pos++

	allowed, known := allowedChildren[head.section]
	if !known {
		return nil, malformed("line %d: unknown section kind %q", head.number, head.section)
	}
	s := &section{
		kind:  head.section,
		name:  head.name,
		line:  head.number,
		attrs: make(map[string]string),
	}

	for r.pos < len(r.lines) {
		l := r.lines[r.pos]
		if l.depth <= depth || l.kind == lineSeparator {
			return s, nil
		}
		if l.depth != depth+1 {
			return nil, malformed("line %d: depth %d inside %s at depth %d", l.number, l.depth, s.kind, depth)
		}

		switch l.kind {
		case lineAttribute:
			s.attrs[l.key] = l.value
			r.pos++
		case lineSection:
			if !containsKind(allowed, l.section) {
				return nil, malformed("line %d: %s section not allowed in %s", l.number, l.section, s.kind)
			}
			child, err := r.readSection(depth + 1)
			if err != nil {
				return nil, err
			}
			s.children = append(s.children, child)
		}
	}
	return s, nil
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// sectionBuilder converts a section tree into the model. The first failure is
// kept in err.
type sectionBuilder struct {
	s   *section
	err error
}

func (b *sectionBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *sectionBuilder) at(s *section) *sectionBuilder {
	return &sectionBuilder{s: s, err: b.err}
}

func (b *sectionBuilder) where() string {
	return fmt.Sprintf("line %d: %s %s", b.s.line, b.s.kind, b.s.name)
}

// name returns the marker name, or the "name" attribute for markers without one.
func (b *sectionBuilder) name() string {
	if b.s.name != "" {
		return b.s.name
	}
	if n := b.s.attrs["name"]; n != "" {
		return n
	}
	b.fail(malformed("%s: missing name", b.where()))
	return ""
}

// optional returns an attribute that may be absent.
func (b *sectionBuilder) optional(key string) string {
	return b.s.attrs[key]
}

func (b *sectionBuilder) required(key string) string {
	v, ok := b.s.attrs[key]
	if !ok {
		b.fail(malformed("%s: missing attribute %q", b.where(), key))
	}
	return v
}

// number reads a required decimal, 0x hexadecimal or 0b binary number.
func (b *sectionBuilder) number(key string) uint64 {
	v := b.required(key)
	if b.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		b.fail(malformed("%s: %s: %v", b.where(), key, err))
	}
	return n
}

func (b *sectionBuilder) flag(key string) bool {
	v, ok := b.s.attrs[key]
	if !ok {
		return false
	}
	f, err := strconv.ParseBool(v)
	if err != nil {
		b.fail(malformed("%s: %s: %v", b.where(), key, err))
	}
	return f
}

func attrToken[T any](b *sectionBuilder, key string, translate func(string) (T, error)) T {
	var zero T
	v := b.required(key)
	if b.err != nil {
		return zero
	}
	t, err := translate(v)
	if err != nil {
		b.fail(fmt.Errorf("%s: %s: %w", b.where(), key, err))
		return zero
	}
	return t
}

func (b *sectionBuilder) peripheral() svd.Peripheral {
	p := svd.Peripheral{
		Name:                b.name(),
		Version:             b.optional("version"),
		AlternatePeripheral: b.optional("alternatePeripheral"),
		GroupName:           b.optional("groupName"),
		PrependToName:       b.optional("prependToName"),
		AppendToName:        b.optional("appendToName"),
		HeaderStructName:    b.optional("headerStructName"),
		DisableCondition:    b.optional("disableCondition"),
		BaseAddress:         b.number("baseAddress"),
		Size:                uint32(b.number("sizeEffective")),
		Access:              attrToken(b, "access", accessType),
		Protection:          attrToken(b, "protection", protectionType),
		ResetValue:          b.number("resetValue"),
		ResetMask:           b.number("resetMask"),
	}
	if p.DisableCondition == "NULL" {
		p.DisableCondition = ""
	}

	for _, child := range b.s.children {
		c := b.at(child)
		switch child.kind {
		case sectionAddressBlock:
			p.AddressBlocks = append(p.AddressBlocks, c.addressBlock())
		case sectionInterrupt:
			p.Interrupts = append(p.Interrupts, c.interrupt())
		case sectionRegister:
			p.Elements = append(p.Elements, svd.RegisterElement(c.register()))
		case sectionCluster:
			p.Elements = append(p.Elements, svd.ClusterElement(c.cluster()))
		}
		b.fail(c.err)
	}
	if b.err != nil {
		return p
	}

	svd.SortAddressBlocks(p.AddressBlocks)
	svd.SortInterrupts(p.Interrupts)
	svd.SortElements(p.Elements, svd.ByAddressOffset)
	p.ResolveAddresses()
	return p
}

func (b *sectionBuilder) addressBlock() svd.AddressBlock {
	return svd.AddressBlock{
		Offset:     b.number("offset"),
		Size:       b.number("size"),
		Usage:      attrToken(b, "usage", blockUsage),
		Protection: attrToken(b, "protection", protectionType),
	}
}

func (b *sectionBuilder) interrupt() svd.Interrupt {
	irq := svd.Interrupt{Name: b.name()}
	irq.Value = int(b.number("value"))
	return irq
}

func (b *sectionBuilder) register() *svd.Register {
	r := &svd.Register{
		Name:                b.name(),
		DisplayName:         b.optional("displayName"),
		AlternateGroup:      b.optional("alternateGroup"),
		AlternateRegister:   b.optional("alternateRegister"),
		AddressOffset:       b.number("addressOffset"),
		ModifiedWriteValues: attrToken(b, "modifiedWriteValues", modifiedWriteValues),
		ReadAction:          attrToken(b, "readAction", readAction),
		Size:                uint32(b.number("sizeEffective")),
		Access:              attrToken(b, "access", accessType),
		Protection:          attrToken(b, "protection", protectionType),
		ResetValue:          b.number("resetValue"),
		ResetMask:           b.number("resetMask"),
	}
	dt, err := dataType(b.optional("dataType"))
	if err != nil {
		b.fail(fmt.Errorf("%s: dataType: %w", b.where(), err))
	}
	r.DataType = dt

	for _, child := range b.s.children {
		c := b.at(child)
		r.Fields = append(r.Fields, c.field())
		b.fail(c.err)
	}
	svd.SortFields(r.Fields)
	return r
}

func (b *sectionBuilder) cluster() *svd.Cluster {
	cl := &svd.Cluster{
		Name:             b.name(),
		AlternateCluster: b.optional("alternateCluster"),
		HeaderStructName: b.optional("headerStructName"),
		AddressOffset:    b.number("addressOffset"),
		Size:             uint32(b.number("sizeEffective")),
		Access:           attrToken(b, "access", accessType),
		Protection:       attrToken(b, "protection", protectionType),
		ResetValue:       b.number("resetValue"),
		ResetMask:        b.number("resetMask"),
	}
	for _, child := range b.s.children {
		c := b.at(child)
		switch child.kind {
		case sectionRegister:
			cl.Elements = append(cl.Elements, svd.RegisterElement(c.register()))
		case sectionCluster:
			cl.Elements = append(cl.Elements, svd.ClusterElement(c.cluster()))
		}
		b.fail(c.err)
	}
	svd.SortElements(cl.Elements, svd.ByAddressOffset)
	return cl
}

func (b *sectionBuilder) field() svd.Field {
	f := svd.Field{
		Name:                b.name(),
		BitOffset:           int(b.number("bitOffset")),
		BitWidth:            int(b.number("bitWidth")),
		Access:              attrToken(b, "access", accessType),
		ModifiedWriteValues: attrToken(b, "modifiedWriteValues", modifiedWriteValues),
		ReadAction:          attrToken(b, "readAction", readAction),
	}
	for _, child := range b.s.children {
		c := b.at(child)
		f.EnumeratedValueContainers = append(f.EnumeratedValueContainers, c.enumContainer(f.BitRange().Width()))
		b.fail(c.err)
	}
	return f
}

func (b *sectionBuilder) enumContainer(width int) svd.EnumeratedValueContainer {
	ec := svd.EnumeratedValueContainer{
		Name:           b.s.name,
		HeaderEnumName: b.optional("headerEnumName"),
		Usage:          attrToken(b, "usage", enumUsage),
	}
	if ec.Name == "" {
		ec.Name = b.optional("name")
	}

	var values []svd.EnumeratedValue
	for _, child := range b.s.children {
		c := b.at(child)
		values = append(values, c.enumeratedValue())
		b.fail(c.err)
	}
	if b.err != nil {
		return ec
	}

	values, err := svd.ExpandDefault(values, width)
	if err != nil {
		b.fail(fmt.Errorf("%s: %w", b.where(), err))
		return ec
	}
	svd.SortEnumeratedValues(values)
	ec.Values = values
	return ec
}

func (b *sectionBuilder) enumeratedValue() svd.EnumeratedValue {
	v := svd.EnumeratedValue{
		Name:      b.name(),
		IsDefault: b.flag("isDefault"),
	}
	if !v.IsDefault {
		v.Value = b.number("value")
	}
	return v
}
