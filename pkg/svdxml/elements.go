package svdxml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// The element types mirror the SVD schema. Optional values are pointers so
// that inheritance and derivedFrom can tell "absent" from "zero".

type deviceElement struct {
	Name string `xml:"name"`
	registerProperties
	Peripherals []peripheralElement `xml:"peripherals>peripheral"`
}

// registerProperties is the registerPropertiesGroup shared by device,
// peripheral, cluster and register.
type registerProperties struct {
	Size       *scaled `xml:"size"`
	Access     *string `xml:"access"`
	Protection *string `xml:"protection"`
	ResetValue *scaled `xml:"resetValue"`
	ResetMask  *scaled `xml:"resetMask"`
}

type dimElement struct {
	Dim          *scaled `xml:"dim"`
	DimIncrement *scaled `xml:"dimIncrement"`
	DimIndex     *string `xml:"dimIndex"`
}

type peripheralElement struct {
	DerivedFrom         string  `xml:"derivedFrom,attr"`
	Name                string  `xml:"name"`
	Version             *string `xml:"version"`
	AlternatePeripheral *string `xml:"alternatePeripheral"`
	GroupName           *string `xml:"groupName"`
	PrependToName       *string `xml:"prependToName"`
	AppendToName        *string `xml:"appendToName"`
	HeaderStructName    *string `xml:"headerStructName"`
	DisableCondition    *string `xml:"disableCondition"`
	BaseAddress         *scaled `xml:"baseAddress"`
	registerProperties
	AddressBlocks []addressBlockElement `xml:"addressBlock"`
	Interrupts    []interruptElement    `xml:"interrupt"`
	Registers     *registersElement     `xml:"registers"`
}

type addressBlockElement struct {
	Offset     scaled  `xml:"offset"`
	Size       scaled  `xml:"size"`
	Usage      string  `xml:"usage"`
	Protection *string `xml:"protection"`
}

type interruptElement struct {
	Name  string `xml:"name"`
	Value scaled `xml:"value"`
}

type registersElement struct {
	Registers []registerElement `xml:"register"`
	Clusters  []clusterElement  `xml:"cluster"`
}

type clusterElement struct {
	DerivedFrom string `xml:"derivedFrom,attr"`
	dimElement
	Name             string  `xml:"name"`
	AlternateCluster *string `xml:"alternateCluster"`
	HeaderStructName *string `xml:"headerStructName"`
	AddressOffset    *scaled `xml:"addressOffset"`
	registerProperties
	Registers []registerElement `xml:"register"`
	Clusters  []clusterElement  `xml:"cluster"`
}

type registerElement struct {
	DerivedFrom string `xml:"derivedFrom,attr"`
	dimElement
	Name                string  `xml:"name"`
	DisplayName         *string `xml:"displayName"`
	AlternateGroup      *string `xml:"alternateGroup"`
	AlternateRegister   *string `xml:"alternateRegister"`
	AddressOffset       *scaled `xml:"addressOffset"`
	DataType            *string `xml:"dataType"`
	ModifiedWriteValues *string `xml:"modifiedWriteValues"`
	ReadAction          *string `xml:"readAction"`
	registerProperties
	Fields *fieldsElement `xml:"fields"`
}

type fieldsElement struct {
	Fields []fieldElement `xml:"field"`
}

type fieldElement struct {
	DerivedFrom string `xml:"derivedFrom,attr"`
	dimElement
	Name                string                    `xml:"name"`
	BitOffset           *scaled                   `xml:"bitOffset"`
	BitWidth            *scaled                   `xml:"bitWidth"`
	LSB                 *scaled                   `xml:"lsb"`
	MSB                 *scaled                   `xml:"msb"`
	BitRange            *string                   `xml:"bitRange"`
	Access              *string                   `xml:"access"`
	ModifiedWriteValues *string                   `xml:"modifiedWriteValues"`
	ReadAction          *string                   `xml:"readAction"`
	EnumeratedValues    []enumeratedValuesElement `xml:"enumeratedValues"`
}

type enumeratedValuesElement struct {
	DerivedFrom    string                   `xml:"derivedFrom,attr"`
	Name           *string                  `xml:"name"`
	HeaderEnumName *string                  `xml:"headerEnumName"`
	Usage          *string                  `xml:"usage"`
	Values         []enumeratedValueElement `xml:"enumeratedValue"`
}

type enumeratedValueElement struct {
	Name      string  `xml:"name"`
	Value     *string `xml:"value"`
	IsDefault *string `xml:"isDefault"`
}

// scaled is an SVD scaledNonNegativeInteger: decimal, 0x hexadecimal, # or 0b
// binary, with an optional k/M/G/T multiplier.
type scaled uint64

func (s *scaled) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v string
	if err := d.DecodeElement(&v, &start); err != nil {
		return err
	}
	n, err := parseScaled(v)
	if err != nil {
		return fmt.Errorf("<%s>: %w", start.Name.Local, err)
	}
	*s = scaled(n)
	return nil
}

func parseScaled(v string) (uint64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "+")
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}

	multiplier := uint64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		multiplier = 1 << 10
	case 'm', 'M':
		multiplier = 1 << 20
	case 'g', 'G':
		multiplier = 1 << 30
	case 't', 'T':
		multiplier = 1 << 40
	}
	if multiplier != 1 && !isHex(s) {
		s = s[:len(s)-1]
	}

	var (
		n   uint64
		err error
	)
	switch {
	case isHex(s):
		n, err = strconv.ParseUint(s[2:], 16, 64)
	case strings.HasPrefix(s, "#"):
		n, err = strconv.ParseUint(s[1:], 2, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		n, err = strconv.ParseUint(s[2:], 2, 64)
	default:
		n, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return n * multiplier, nil
}

func isHex(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

func (s *scaled) value(def uint64) uint64 {
	if s == nil {
		return def
	}
	return uint64(*s)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
