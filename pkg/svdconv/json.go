package svdconv

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// JSONParser reads the output of `svdconv --debug-output-json`: an array of
// peripheral objects with camelCase keys.
type JSONParser struct {
	logger *slog.Logger
}

// NewJSONParser returns a JSONParser. A nil logger uses slog.Default.
func NewJSONParser(logger *slog.Logger) *JSONParser {
	return &JSONParser{logger: orDefault(logger)}
}

// Parse implements Parser.
func (p *JSONParser) Parse(output []byte) ([]svd.Peripheral, bool, error) {
	ps, err := p.parse(output)
	return absorb(p.logger, FormatJSON, ps, err)
}

func (p *JSONParser) parse(output []byte) ([]svd.Peripheral, error) {
	if err := checkSummary(output); err != nil {
		return nil, err
	}

	body := jsonBody(output)
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, malformed("invalid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, malformed("top level is %s, want array", root.Type)
	}

	items := root.Array()
	peripherals := make([]svd.Peripheral, 0, len(items))
	for i, item := range items {
		o := newObject(item, fmt.Sprintf("peripherals[%d]", i))
		peripheral := o.peripheral()
		if o.err != nil {
			return nil, o.err
		}
		peripherals = append(peripherals, peripheral)
	}
	svd.SortPeripherals(peripherals)

	p.logger.Debug("parsed reference JSON output", "peripherals", len(peripherals))
	return peripherals, nil
}

// jsonBody cuts the JSON array out of output, dropping banner and summary
// lines around it.
func jsonBody(output []byte) []byte {
	lines := bytes.Split(output, []byte("\n"))
	start, end := jsonSpan(lines)
	if start < 0 || end < start {
		return bytes.TrimSpace(output)
	}
	return bytes.TrimSpace(bytes.Join(lines[start:end+1], []byte("\n")))
}

// jsonSpan returns the first line opening an array and the last line closing
// one, or -1 when there is none.
func jsonSpan(lines [][]byte) (start, end int) {
	start, end = -1, -1
	for i, line := range lines {
		t := bytes.TrimSpace(line)
		if start < 0 && bytes.HasPrefix(t, []byte("[")) {
			start = i
		}
		if start >= 0 && bytes.HasSuffix(t, []byte("]")) {
			end = i
		}
	}
	return start, end
}

// object reads keys from one JSON object. The first failure is kept in err and
// every later read returns a zero value.
type object struct {
	r    gjson.Result
	path string
	err  error
}

func newObject(r gjson.Result, path string) *object {
	o := &object{r: r, path: path}
	if !r.IsObject() {
		o.err = malformed("%s: is %s, want object", path, r.Type)
	}
	return o
}

func (o *object) child(r gjson.Result, path string) *object {
	c := newObject(r, o.path+"."+path)
	if o.err != nil {
		c.err = o.err
	}
	return c
}

func (o *object) get(key string) (gjson.Result, bool) {
	if o.err != nil {
		return gjson.Result{}, false
	}
	v := o.r.Get(key)
	if !v.Exists() {
		o.err = malformed("%s: missing key %q", o.path, key)
		return v, false
	}
	return v, true
}

// str reads a string; null reads as "".
func (o *object) str(key string) string {
	v, ok := o.get(key)
	if !ok {
		return ""
	}
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	}
	o.err = malformed("%s.%s: is %s, want string", o.path, key, v.Type)
	return ""
}

func (o *object) uint(key string) uint64 {
	v, ok := o.get(key)
	if !ok {
		return 0
	}
	if v.Type != gjson.Number {
		o.err = malformed("%s.%s: is %s, want number", o.path, key, v.Type)
		return 0
	}
	n, err := strconv.ParseUint(v.Raw, 10, 64)
	if err != nil {
		o.err = malformed("%s.%s: %v", o.path, key, err)
		return 0
	}
	return n
}

func (o *object) int(key string) int {
	v, ok := o.get(key)
	if !ok {
		return 0
	}
	if v.Type != gjson.Number {
		o.err = malformed("%s.%s: is %s, want number", o.path, key, v.Type)
		return 0
	}
	n, err := strconv.Atoi(v.Raw)
	if err != nil {
		o.err = malformed("%s.%s: %v", o.path, key, err)
		return 0
	}
	return n
}

func (o *object) bool(key string) bool {
	v, ok := o.get(key)
	if !ok {
		return false
	}
	if !v.IsBool() {
		o.err = malformed("%s.%s: is %s, want boolean", o.path, key, v.Type)
		return false
	}
	return v.Bool()
}

func (o *object) array(key string) []gjson.Result {
	v, ok := o.get(key)
	if !ok {
		return nil
	}
	if !v.IsArray() {
		o.err = malformed("%s.%s: is %s, want array", o.path, key, v.Type)
		return nil
	}
	return v.Array()
}

// token reads a string and translates it through a vocabulary table.
func token[T any](o *object, key string, translate func(string) (T, error)) T {
	var zero T
	s := o.str(key)
	if o.err != nil {
		return zero
	}
	v, err := translate(s)
	if err != nil {
		o.err = fmt.Errorf("%s.%s: %w", o.path, key, err)
		return zero
	}
	return v
}

func (o *object) peripheral() svd.Peripheral {
	p := svd.Peripheral{
		Name:                o.str("name"),
		Version:             o.str("version"),
		AlternatePeripheral: o.str("alternatePeripheral"),
		GroupName:           o.str("groupName"),
		PrependToName:       o.str("prependToName"),
		AppendToName:        o.str("appendToName"),
		HeaderStructName:    o.str("headerStructName"),
		DisableCondition:    o.str("disableCondition"),
		BaseAddress:         o.uint("baseAddress"),
		AddressBlocks:       o.addressBlocks(),
		Interrupts:          o.interrupts(),
		Size:                uint32(o.uint("sizeEffective")),
		Access:              token(o, "access", accessType),
		Protection:          token(o, "protection", protectionType),
		ResetValue:          o.uint("resetValue"),
		ResetMask:           o.uint("resetMask"),
		Elements:            o.elements(),
	}
	if p.DisableCondition == "NULL" {
		p.DisableCondition = ""
	}
	return p
}

func (o *object) addressBlocks() []svd.AddressBlock {
	items := o.array("addressBlocks")
	var blocks []svd.AddressBlock
	for i, item := range items {
		c := o.child(item, fmt.Sprintf("addressBlocks[%d]", i))
		blocks = append(blocks, svd.AddressBlock{
			Offset:     c.uint("offset"),
			Size:       c.uint("size"),
			Usage:      token(c, "usage", blockUsage),
			Protection: token(c, "protection", protectionType),
		})
		o.err = c.err
	}
	svd.SortAddressBlocks(blocks)
	return blocks
}

func (o *object) interrupts() []svd.Interrupt {
	items := o.array("interrupts")
	var irqs []svd.Interrupt
	for i, item := range items {
		c := o.child(item, fmt.Sprintf("interrupts[%d]", i))
		irqs = append(irqs, svd.Interrupt{
			Name:  c.str("name"),
			Value: c.int("value"),
		})
		o.err = c.err
	}
	svd.SortInterrupts(irqs)
	return irqs
}

func (o *object) elements() []svd.Element {
	items := o.array("registersClusters")
	var elements []svd.Element
	for i, item := range items {
		c := o.child(item, fmt.Sprintf("registersClusters[%d]", i))
		switch token(c, "type", elementType) {
		case svd.KindRegister:
			elements = append(elements, svd.RegisterElement(c.register()))
		case svd.KindCluster:
			elements = append(elements, svd.ClusterElement(c.cluster()))
		}
		o.err = c.err
	}
	if o.err != nil {
		return nil
	}
	svd.SortElements(elements, svd.ByBaseAddress)
	return elements
}

func (o *object) register() *svd.Register {
	return &svd.Register{
		Name:                o.str("name"),
		DisplayName:         o.str("displayName"),
		AlternateGroup:      o.str("alternateGroup"),
		AlternateRegister:   o.str("alternateRegister"),
		AddressOffset:       o.uint("addressOffset"),
		BaseAddress:         o.uint("absoluteAddress"),
		DataType:            token(o, "dataType", dataType),
		ModifiedWriteValues: token(o, "modifiedWriteValues", modifiedWriteValues),
		ReadAction:          token(o, "readAction", readAction),
		Size:                uint32(o.uint("sizeEffective")),
		Access:              token(o, "access", accessType),
		Protection:          token(o, "protection", protectionType),
		ResetValue:          o.uint("resetValue"),
		ResetMask:           o.uint("resetMask"),
		Fields:              o.fields(),
	}
}

func (o *object) cluster() *svd.Cluster {
	return &svd.Cluster{
		Name:             o.str("name"),
		AlternateCluster: o.str("alternateCluster"),
		HeaderStructName: o.str("headerStructName"),
		AddressOffset:    o.uint("addressOffset"),
		BaseAddress:      o.uint("absoluteAddress"),
		Size:             uint32(o.uint("sizeEffective")),
		Access:           token(o, "access", accessType),
		Protection:       token(o, "protection", protectionType),
		ResetValue:       o.uint("resetValue"),
		ResetMask:        o.uint("resetMask"),
		Elements:         o.elements(),
	}
}

func (o *object) fields() []svd.Field {
	items := o.array("fields")
	var fields []svd.Field
	for i, item := range items {
		c := o.child(item, fmt.Sprintf("fields[%d]", i))
		f := svd.Field{
			Name:                c.str("name"),
			BitOffset:           c.int("bitOffset"),
			BitWidth:            c.int("bitWidth"),
			Access:              token(c, "access", accessType),
			ModifiedWriteValues: token(c, "modifiedWriteValues", modifiedWriteValues),
			ReadAction:          token(c, "readAction", readAction),
		}
		f.EnumeratedValueContainers = c.enumContainers(f.BitRange().Width())
		fields = append(fields, f)
		o.err = c.err
	}
	svd.SortFields(fields)
	return fields
}

func (o *object) enumContainers(width int) []svd.EnumeratedValueContainer {
	items := o.array("enumContainers")
	var containers []svd.EnumeratedValueContainer
	for i, item := range items {
		c := o.child(item, fmt.Sprintf("enumContainers[%d]", i))
		containers = append(containers, svd.EnumeratedValueContainer{
			Name:           c.str("name"),
			HeaderEnumName: c.str("headerEnumName"),
			Usage:          token(c, "usage", enumUsage),
			Values:         c.enumeratedValues(width),
		})
		o.err = c.err
	}
	return containers
}

func (o *object) enumeratedValues(width int) []svd.EnumeratedValue {
	items := o.array("enumeratedValues")
	var values []svd.EnumeratedValue
	for i, item := range items {
		c := o.child(item, fmt.Sprintf("enumeratedValues[%d]", i))
		v := svd.EnumeratedValue{
			Name:      c.str("name"),
			IsDefault: c.bool("isDefault"),
		}
		raw := c.str("value")
		if c.err == nil && !v.IsDefault {
			n, err := parseBinary(raw)
			if err != nil {
				c.err = malformed("%s.value: %v", c.path, err)
			}
			v.Value = n
		}
		values = append(values, v)
		o.err = c.err
	}
	if o.err != nil {
		return nil
	}

	values, err := svd.ExpandDefault(values, width)
	if err != nil {
		o.err = fmt.Errorf("%s: %w", o.path, err)
		return nil
	}
	svd.SortEnumeratedValues(values)
	return values
}

// parseBinary decodes the "0b101" literals svdconv prints for enumerated values.
func parseBinary(s string) (uint64, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(s), "0b", "")
	if digits == "" {
		return 0, fmt.Errorf("empty binary literal %q", s)
	}
	return strconv.ParseUint(digits, 2, 64)
}
