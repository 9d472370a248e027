package svdxml

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// properties are the inherited registerPropertiesGroup values.
type properties struct {
	size       uint32
	access     svd.AccessType
	protection svd.ProtectionType
	resetValue uint64
	resetMask  uint64
}

var deviceDefaults = properties{
	size:       32,
	access:     svd.ReadWrite,
	protection: svd.ProtectionAny,
	resetValue: 0,
	resetMask:  0xFFFFFFFF,
}

// checker keeps the first error of a sequence of lookups, like a bufio.Scanner.
type checker struct {
	err error
}

func (c *checker) fail(err error) {
	if c.err == nil && err != nil {
		c.err = err
	}
}

func lookup[T any](c *checker, element string, table map[string]T, v *string, def T) T {
	t, err := token(element, table, v, def)
	c.fail(err)
	return t
}

func (p properties) overlay(c *checker, rp registerProperties) properties {
	return properties{
		size:       uint32(rp.Size.value(uint64(p.size))),
		access:     lookup(c, "access", accessNames, rp.Access, p.access),
		protection: lookup(c, "protection", protectionNames, rp.Protection, p.protection),
		resetValue: rp.ResetValue.value(p.resetValue),
		resetMask:  rp.ResetMask.value(p.resetMask),
	}
}

// builder turns decoded SVD elements into the processed svd model.
type builder struct {
	logger *slog.Logger
}

func (b *builder) device(dev *deviceElement) ([]svd.Peripheral, error) {
	var c checker
	props := deviceDefaults.overlay(&c, dev.registerProperties)
	if c.err != nil {
		return nil, fmt.Errorf("device %s: %w", dev.Name, c.err)
	}

	siblings := make(map[string]*peripheralElement, len(dev.Peripherals))
	for i := range dev.Peripherals {
		siblings[dev.Peripherals[i].Name] = &dev.Peripherals[i]
	}

	peripherals := make([]svd.Peripheral, 0, len(dev.Peripherals))
	for i := range dev.Peripherals {
		pe, err := derive(&dev.Peripherals[i], siblings, derivePeripheral)
		if err != nil {
			return nil, fmt.Errorf("peripheral %s: %w", dev.Peripherals[i].Name, err)
		}
		p, err := b.peripheral(pe, props)
		if err != nil {
			return nil, fmt.Errorf("peripheral %s: %w", pe.Name, err)
		}
		peripherals = append(peripherals, p)
	}

	svd.SortTree(peripherals, svd.ByBaseAddress)
	return peripherals, nil
}

func (b *builder) peripheral(pe *peripheralElement, parent properties) (svd.Peripheral, error) {
	var c checker
	props := parent.overlay(&c, pe.registerProperties)
	if pe.BaseAddress == nil {
		return svd.Peripheral{}, fmt.Errorf("missing <baseAddress>")
	}

	p := svd.Peripheral{
		Name:                pe.Name,
		Version:             str(pe.Version),
		AlternatePeripheral: str(pe.AlternatePeripheral),
		GroupName:           str(pe.GroupName),
		PrependToName:       str(pe.PrependToName),
		AppendToName:        str(pe.AppendToName),
		HeaderStructName:    str(pe.HeaderStructName),
		DisableCondition:    str(pe.DisableCondition),
		BaseAddress:         pe.BaseAddress.value(0),
		Size:                props.size,
		Access:              props.access,
		Protection:          props.protection,
		ResetValue:          props.resetValue,
		ResetMask:           props.resetMask,
	}

	for _, ab := range pe.AddressBlocks {
		usage := svd.BlockUsageUndefined
		if ab.Usage != "" {
			u := ab.Usage
			usage = lookup(&c, "usage", blockUsageNames, &u, svd.BlockUsageUndefined)
		}
		p.AddressBlocks = append(p.AddressBlocks, svd.AddressBlock{
			Offset:     uint64(ab.Offset),
			Size:       uint64(ab.Size),
			Usage:      usage,
			Protection: lookup(&c, "protection", protectionNames, ab.Protection, svd.ProtectionAny),
		})
	}
	for _, irq := range pe.Interrupts {
		p.Interrupts = append(p.Interrupts, svd.Interrupt{Name: strings.TrimSpace(irq.Name), Value: int(irq.Value)})
	}
	if c.err != nil {
		return p, c.err
	}

	if pe.Registers != nil {
		es, err := b.elements(pe.Registers.Registers, pe.Registers.Clusters, props)
		if err != nil {
			return p, err
		}
		p.Elements = es
	}
	p.ResolveAddresses()
	return p, nil
}

func (b *builder) elements(registers []registerElement, clusters []clusterElement, parent properties) ([]svd.Element, error) {
	var es []svd.Element

	regSiblings := make(map[string]*registerElement, len(registers))
	for i := range registers {
		regSiblings[registers[i].Name] = &registers[i]
	}
	for i := range registers {
		re, err := derive(&registers[i], regSiblings, deriveRegister)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", registers[i].Name, err)
		}
		for _, inst := range b.instances(re.Name, re.dimElement, re.AddressOffset.value(0)) {
			r, err := b.register(re, inst, parent)
			if err != nil {
				return nil, fmt.Errorf("register %s: %w", inst.name, err)
			}
			es = append(es, svd.RegisterElement(r))
		}
	}

	clusterSiblings := make(map[string]*clusterElement, len(clusters))
	for i := range clusters {
		clusterSiblings[clusters[i].Name] = &clusters[i]
	}
	for i := range clusters {
		ce, err := derive(&clusters[i], clusterSiblings, deriveCluster)
		if err != nil {
			return nil, fmt.Errorf("cluster %s: %w", clusters[i].Name, err)
		}
		for _, inst := range b.instances(ce.Name, ce.dimElement, ce.AddressOffset.value(0)) {
			cl, err := b.cluster(ce, inst, parent)
			if err != nil {
				return nil, fmt.Errorf("cluster %s: %w", inst.name, err)
			}
			es = append(es, svd.ClusterElement(cl))
		}
	}
	return es, nil
}

func (b *builder) cluster(ce *clusterElement, inst instance, parent properties) (*svd.Cluster, error) {
	var c checker
	props := parent.overlay(&c, ce.registerProperties)
	if c.err != nil {
		return nil, c.err
	}
	es, err := b.elements(ce.Registers, ce.Clusters, props)
	if err != nil {
		return nil, err
	}
	return &svd.Cluster{
		Name:             inst.name,
		AlternateCluster: str(ce.AlternateCluster),
		HeaderStructName: str(ce.HeaderStructName),
		AddressOffset:    inst.offset,
		Size:             props.size,
		Access:           props.access,
		Protection:       props.protection,
		ResetValue:       props.resetValue,
		ResetMask:        props.resetMask,
		Elements:         es,
	}, nil
}

// fieldDefaults are the register values a field inherits.
type fieldDefaults struct {
	access              svd.AccessType
	modifiedWriteValues svd.ModifiedWriteValues
	readAction          svd.ReadAction
}

func (b *builder) register(re *registerElement, inst instance, parent properties) (*svd.Register, error) {
	var c checker
	props := parent.overlay(&c, re.registerProperties)
	r := &svd.Register{
		Name:                inst.name,
		DisplayName:         strings.ReplaceAll(str(re.DisplayName), "%s", inst.index),
		AlternateGroup:      str(re.AlternateGroup),
		AlternateRegister:   str(re.AlternateRegister),
		AddressOffset:       inst.offset,
		ModifiedWriteValues: lookup(&c, "modifiedWriteValues", modifiedWriteNames, re.ModifiedWriteValues, svd.WriteModify),
		ReadAction:          lookup(&c, "readAction", readActionNames, re.ReadAction, svd.ReadActionNone),
		Size:                props.size,
		Access:              props.access,
		Protection:          props.protection,
		ResetValue:          props.resetValue,
		ResetMask:           props.resetMask,
	}
	dt, err := dataType(re.DataType)
	c.fail(err)
	r.DataType = dt
	if c.err != nil {
		return nil, c.err
	}

	if re.Fields == nil {
		return r, nil
	}
	fields, err := b.fields(re.Fields.Fields, fieldDefaults{
		access:              r.Access,
		modifiedWriteValues: r.ModifiedWriteValues,
		readAction:          r.ReadAction,
	})
	if err != nil {
		return nil, err
	}
	r.Fields = fields
	return r, nil
}

func (b *builder) fields(elements []fieldElement, defaults fieldDefaults) ([]svd.Field, error) {
	siblings := make(map[string]*fieldElement, len(elements))
	enums := make(map[string]*enumeratedValuesElement)
	for i := range elements {
		siblings[elements[i].Name] = &elements[i]
		for j := range elements[i].EnumeratedValues {
			if n := str(elements[i].EnumeratedValues[j].Name); n != "" {
				enums[n] = &elements[i].EnumeratedValues[j]
			}
		}
	}

	var fields []svd.Field
	for i := range elements {
		fe, err := derive(&elements[i], siblings, deriveField)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", elements[i].Name, err)
		}
		br, err := bitRange(fe)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fe.Name, err)
		}

		for _, inst := range b.instances(fe.Name, fe.dimElement, uint64(br.LSB)) {
			var c checker
			f := svd.Field{
				Name:                inst.name,
				BitOffset:           int(inst.offset),
				BitWidth:            br.Width(),
				Access:              lookup(&c, "access", accessNames, fe.Access, defaults.access),
				ModifiedWriteValues: lookup(&c, "modifiedWriteValues", modifiedWriteNames, fe.ModifiedWriteValues, defaults.modifiedWriteValues),
				ReadAction:          lookup(&c, "readAction", readActionNames, fe.ReadAction, defaults.readAction),
			}
			for j := range fe.EnumeratedValues {
				ec, err := enumContainer(&fe.EnumeratedValues[j], f.BitWidth, enums)
				c.fail(err)
				f.EnumeratedValueContainers = append(f.EnumeratedValueContainers, ec)
			}
			if c.err != nil {
				return nil, fmt.Errorf("field %s: %w", inst.name, c.err)
			}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

var bitRangePattern = regexp.MustCompile(`^\[\s*(\d+)\s*:\s*(\d+)\s*\]$`)

// bitRange reads one of the three SVD field position styles.
func bitRange(fe *fieldElement) (svd.BitRange, error) {
	switch {
	case fe.BitOffset != nil:
		width := fe.BitWidth.value(1)
		if width == 0 {
			return svd.BitRange{}, fmt.Errorf("zero <bitWidth>")
		}
		lsb := int(*fe.BitOffset)
		return svd.BitRange{MSB: lsb + int(width) - 1, LSB: lsb}, nil
	case fe.LSB != nil && fe.MSB != nil:
		return orderedRange(int(*fe.MSB), int(*fe.LSB))
	case fe.BitRange != nil:
		m := bitRangePattern.FindStringSubmatch(str(fe.BitRange))
		if m == nil {
			return svd.BitRange{}, fmt.Errorf("invalid <bitRange> %q", str(fe.BitRange))
		}
		msb, _ := strconv.Atoi(m[1])
		lsb, _ := strconv.Atoi(m[2])
		return orderedRange(msb, lsb)
	}
	return svd.BitRange{}, fmt.Errorf("no bit position")
}

func orderedRange(msb, lsb int) (svd.BitRange, error) {
	if msb < lsb {
		return svd.BitRange{}, fmt.Errorf("msb %d below lsb %d", msb, lsb)
	}
	return svd.BitRange{MSB: msb, LSB: lsb}, nil
}

func enumContainer(ev *enumeratedValuesElement, width int, scope map[string]*enumeratedValuesElement) (svd.EnumeratedValueContainer, error) {
	if ev.DerivedFrom != "" {
		base, ok := scope[lastSegment(ev.DerivedFrom)]
		if !ok {
			return svd.EnumeratedValueContainer{}, fmt.Errorf("enumeratedValues derivedFrom %q: no such element", ev.DerivedFrom)
		}
		merged := *base
		merged.DerivedFrom = ""
		merged.Name = pick(ev.Name, base.Name)
		merged.HeaderEnumName = pick(ev.HeaderEnumName, base.HeaderEnumName)
		merged.Usage = pick(ev.Usage, base.Usage)
		if len(ev.Values) > 0 {
			merged.Values = ev.Values
		}
		ev = &merged
	}

	var c checker
	ec := svd.EnumeratedValueContainer{
		Name:           str(ev.Name),
		HeaderEnumName: str(ev.HeaderEnumName),
		Usage:          lookup(&c, "usage", enumUsageNames, ev.Usage, svd.EnumReadWrite),
	}
	if c.err != nil {
		return ec, c.err
	}

	var values []svd.EnumeratedValue
	for _, v := range ev.Values {
		if isTrue(v.IsDefault) {
			values = append(values, svd.EnumeratedValue{Name: v.Name, IsDefault: true})
			continue
		}
		if v.Value == nil {
			return ec, fmt.Errorf("enumeratedValue %s: missing <value>", v.Name)
		}
		ns, err := enumeratedValue(str(v.Value), width)
		if err != nil {
			return ec, fmt.Errorf("enumeratedValue %s: %w", v.Name, err)
		}
		for _, n := range ns {
			values = append(values, svd.EnumeratedValue{Name: v.Name, Value: n})
		}
	}

	values, err := svd.ExpandDefault(values, width)
	if err != nil {
		return ec, err
	}
	svd.SortEnumeratedValues(values)
	ec.Values = values
	return ec, nil
}

// enumeratedValue decodes an enumerated <value> of a width-bit field. Binary
// values may contain x for don't-care bits and match every value the pattern
// allows. Digits beyond the field width must be 0, and at most
// svd.MaxDefaultExpansionWidth bits may be x.
func enumeratedValue(s string, width int) ([]uint64, error) {
	var bits string
	switch {
	case strings.HasPrefix(s, "#"):
		bits = s[1:]
	case strings.HasPrefix(s, "0b"), strings.HasPrefix(s, "0B"):
		bits = s[2:]
	default:
		n, err := parseScaled(s)
		if err != nil {
			return nil, err
		}
		return []uint64{n}, nil
	}
	if bits == "" || len(bits) > 64 {
		return nil, fmt.Errorf("invalid binary value %q", s)
	}
	if excess := len(bits) - width; width > 0 && excess > 0 {
		if strings.Trim(bits[:excess], "0") != "" {
			return nil, fmt.Errorf("binary value %q is wider than the %d-bit field", s, width)
		}
		bits = bits[excess:]
	}
	if n := strings.Count(strings.ToLower(bits), "x"); n > svd.MaxDefaultExpansionWidth {
		return nil, fmt.Errorf("binary value %q has %d don't-care bits, at most %d are expanded", s, n, svd.MaxDefaultExpansionWidth)
	}

	values := []uint64{0}
	for _, ch := range bits {
		next := values[:0:0]
		for _, v := range values {
			switch ch {
			case '0':
				next = append(next, v<<1)
			case '1':
				next = append(next, v<<1|1)
			case 'x', 'X':
				next = append(next, v<<1, v<<1|1)
			default:
				return nil, fmt.Errorf("invalid binary value %q", s)
			}
		}
		values = next
	}
	return values, nil
}

func isTrue(v *string) bool {
	switch str(v) {
	case "true", "1":
		return true
	}
	return false
}

// instance is one element of a possibly dim-expanded register, cluster or field.
type instance struct {
	name   string
	index  string
	offset uint64
}

// instances expands dim arrays. Names carry %s, which is replaced by each
// dimIndex entry; offsets advance by dimIncrement.
func (b *builder) instances(name string, dim dimElement, offset uint64) []instance {
	if dim.Dim == nil {
		return []instance{{name: name, offset: offset}}
	}
	if !strings.Contains(name, "%s") {
		b.logger.Warn("ignoring <dim> on element without %s placeholder", "name", name)
		return []instance{{name: name, offset: offset}}
	}

	indices, err := dimIndices(str(dim.DimIndex), int(*dim.Dim))
	if err != nil {
		b.logger.Warn("invalid <dimIndex>, using 0..dim-1", "name", name, "error", err)
		indices, _ = dimIndices("", int(*dim.Dim))
	}
	step := dim.DimIncrement.value(0)

	out := make([]instance, 0, len(indices))
	for i, idx := range indices {
		out = append(out, instance{
			name:   strings.ReplaceAll(name, "%s", idx),
			index:  idx,
			offset: offset + uint64(i)*step,
		})
	}
	return out
}

var (
	numericRange = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)$`)
	letterRange  = regexp.MustCompile(`^([A-Z])\s*-\s*([A-Z])$`)
)

// dimIndices expands a dimIndex: "0-7", "A-D", "a,b,c" or empty for 0..n-1.
func dimIndices(index string, n int) ([]string, error) {
	var out []string
	switch {
	case index == "":
		for i := 0; i < n; i++ {
			out = append(out, strconv.Itoa(i))
		}
	case numericRange.MatchString(index):
		m := numericRange.FindStringSubmatch(index)
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])
		for i := from; i <= to; i++ {
			out = append(out, strconv.Itoa(i))
		}
	case letterRange.MatchString(index):
		m := letterRange.FindStringSubmatch(index)
		for ch := m[1][0]; ch <= m[2][0]; ch++ {
			out = append(out, string(ch))
		}
	default:
		for _, s := range strings.Split(index, ",") {
			out = append(out, strings.TrimSpace(s))
		}
	}
	if len(out) != n {
		return nil, fmt.Errorf("dimIndex %q has %d entries, dim is %d", index, len(out), n)
	}
	return out, nil
}

// derive resolves the derivedFrom chain of e among its siblings.
func derive[E any, P interface {
	*E
	derivedFrom() string
}](e P, siblings map[string]P, merge func(derived, base P) E) (P, error) {
	seen := make(map[P]bool)
	var walk func(P) (P, error)
	walk = func(e P) (P, error) {
		var zero P
		ref := e.derivedFrom()
		if ref == "" {
			return e, nil
		}
		if seen[e] {
			return zero, fmt.Errorf("derivedFrom cycle through %q", ref)
		}
		seen[e] = true
		base, ok := siblings[lastSegment(ref)]
		if !ok {
			return zero, fmt.Errorf("derivedFrom %q: no such element", ref)
		}
		resolved, err := walk(base)
		if err != nil {
			return zero, err
		}
		merged := merge(e, resolved)
		return P(&merged), nil
	}
	return walk(e)
}

func lastSegment(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func pick[T any](derived, base *T) *T {
	if derived != nil {
		return derived
	}
	return base
}

func mergeProperties(d, b registerProperties) registerProperties {
	return registerProperties{
		Size:       pick(d.Size, b.Size),
		Access:     pick(d.Access, b.Access),
		Protection: pick(d.Protection, b.Protection),
		ResetValue: pick(d.ResetValue, b.ResetValue),
		ResetMask:  pick(d.ResetMask, b.ResetMask),
	}
}

func mergeDim(d, b dimElement) dimElement {
	return dimElement{
		Dim:          pick(d.Dim, b.Dim),
		DimIncrement: pick(d.DimIncrement, b.DimIncrement),
		DimIndex:     pick(d.DimIndex, b.DimIndex),
	}
}

func (p *peripheralElement) derivedFrom() string { return p.DerivedFrom }
func (r *registerElement) derivedFrom() string   { return r.DerivedFrom }
func (c *clusterElement) derivedFrom() string    { return c.DerivedFrom }
func (f *fieldElement) derivedFrom() string      { return f.DerivedFrom }

// derivePeripheral copies base and overlays what d sets. Interrupts are never
// inherited.
func derivePeripheral(d, base *peripheralElement) peripheralElement {
	out := *base
	out.DerivedFrom = ""
	out.Name = d.Name
	out.Version = pick(d.Version, base.Version)
	out.AlternatePeripheral = pick(d.AlternatePeripheral, base.AlternatePeripheral)
	out.GroupName = pick(d.GroupName, base.GroupName)
	out.PrependToName = pick(d.PrependToName, base.PrependToName)
	out.AppendToName = pick(d.AppendToName, base.AppendToName)
	out.HeaderStructName = pick(d.HeaderStructName, base.HeaderStructName)
	out.DisableCondition = pick(d.DisableCondition, base.DisableCondition)
	out.BaseAddress = pick(d.BaseAddress, base.BaseAddress)
	out.registerProperties = mergeProperties(d.registerProperties, base.registerProperties)
	if len(d.AddressBlocks) > 0 {
		out.AddressBlocks = d.AddressBlocks
	}
	out.Interrupts = d.Interrupts
	if d.Registers != nil {
		out.Registers = d.Registers
	}
	return out
}

func deriveRegister(d, base *registerElement) registerElement {
	out := *base
	out.DerivedFrom = ""
	out.Name = d.Name
	out.dimElement = mergeDim(d.dimElement, base.dimElement)
	out.DisplayName = pick(d.DisplayName, base.DisplayName)
	out.AlternateGroup = pick(d.AlternateGroup, base.AlternateGroup)
	out.AlternateRegister = pick(d.AlternateRegister, base.AlternateRegister)
	out.AddressOffset = pick(d.AddressOffset, base.AddressOffset)
	out.DataType = pick(d.DataType, base.DataType)
	out.ModifiedWriteValues = pick(d.ModifiedWriteValues, base.ModifiedWriteValues)
	out.ReadAction = pick(d.ReadAction, base.ReadAction)
	out.registerProperties = mergeProperties(d.registerProperties, base.registerProperties)
	out.Fields = pick(d.Fields, base.Fields)
	return out
}

func deriveCluster(d, base *clusterElement) clusterElement {
	out := *base
	out.DerivedFrom = ""
	out.Name = d.Name
	out.dimElement = mergeDim(d.dimElement, base.dimElement)
	out.AlternateCluster = pick(d.AlternateCluster, base.AlternateCluster)
	out.HeaderStructName = pick(d.HeaderStructName, base.HeaderStructName)
	out.AddressOffset = pick(d.AddressOffset, base.AddressOffset)
	out.registerProperties = mergeProperties(d.registerProperties, base.registerProperties)
	if len(d.Registers) > 0 || len(d.Clusters) > 0 {
		out.Registers = d.Registers
		out.Clusters = d.Clusters
	}
	return out
}

func deriveField(d, base *fieldElement) fieldElement {
	out := *base
	out.DerivedFrom = ""
	out.Name = d.Name
	out.dimElement = mergeDim(d.dimElement, base.dimElement)
	if d.BitOffset != nil || d.LSB != nil || d.BitRange != nil {
		out.BitOffset, out.BitWidth = d.BitOffset, d.BitWidth
		out.LSB, out.MSB = d.LSB, d.MSB
		out.BitRange = d.BitRange
	}
	out.Access = pick(d.Access, base.Access)
	out.ModifiedWriteValues = pick(d.ModifiedWriteValues, base.ModifiedWriteValues)
	out.ReadAction = pick(d.ReadAction, base.ReadAction)
	if len(d.EnumeratedValues) > 0 {
		out.EnumeratedValues = d.EnumeratedValues
	}
	return out
}
