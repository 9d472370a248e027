package svd

import "fmt"

// Peripheral is a named, memory-mapped hardware block.
type Peripheral struct {
	Name                string
	Version             string
	AlternatePeripheral string
	GroupName           string
	PrependToName       string
	AppendToName        string
	HeaderStructName    string
	DisableCondition    string // parsed for display only, never compared
	BaseAddress         uint64
	AddressBlocks       []AddressBlock
	Interrupts          []Interrupt
	Size                uint32
	Access              AccessType
	Protection          ProtectionType
	ResetValue          uint64
	ResetMask           uint64
	Elements            []Element // registers and clusters
}

// AddressBlock describes one contiguous mapped region of a peripheral.
type AddressBlock struct {
	Offset     uint64
	Size       uint64
	Usage      AddressBlockUsage
	Protection ProtectionType
}

// Interrupt binds a name to a vector number.
type Interrupt struct {
	Name  string
	Value int
}

// Register is a leaf addressable unit.
type Register struct {
	Name                string
	DisplayName         string
	AlternateGroup      string
	AlternateRegister   string
	AddressOffset       uint64 // relative to the enclosing peripheral or cluster
	BaseAddress         uint64 // absolute
	DataType            DataType
	ModifiedWriteValues ModifiedWriteValues
	ReadAction          ReadAction
	Size                uint32
	Access              AccessType
	Protection          ProtectionType
	ResetValue          uint64
	ResetMask           uint64
	Fields              []Field
}

// Cluster groups registers and nested clusters.
type Cluster struct {
	Name             string
	AlternateCluster string
	HeaderStructName string
	AddressOffset    uint64
	BaseAddress      uint64
	Size             uint32
	Access           AccessType
	Protection       ProtectionType
	ResetValue       uint64
	ResetMask        uint64
	Elements         []Element
}

// Field is a bit range within a register. LSB, MSB and BitRange are derived
// from BitOffset and BitWidth.
type Field struct {
	Name                      string
	BitOffset                 int
	BitWidth                  int
	Access                    AccessType
	ModifiedWriteValues       ModifiedWriteValues
	ReadAction                ReadAction
	EnumeratedValueContainers []EnumeratedValueContainer
}

// LSB returns the least significant bit of the field.
func (f *Field) LSB() int { return f.BitOffset }

// MSB returns the most significant bit of the field.
func (f *Field) MSB() int { return f.BitOffset + f.BitWidth - 1 }

// BitRange returns the (msb, lsb) pair of the field.
func (f *Field) BitRange() BitRange {
	return BitRange{MSB: f.MSB(), LSB: f.LSB()}
}

// BitRange is an inclusive [MSB:LSB] bit span.
type BitRange struct {
	MSB int
	LSB int
}

func (b BitRange) String() string {
	return fmt.Sprintf("[%d:%d]", b.MSB, b.LSB)
}

// Width returns the number of bits covered by the range.
func (b BitRange) Width() int {
	return b.MSB - b.LSB + 1
}

// EnumeratedValueContainer groups enumerated values under one usage.
type EnumeratedValueContainer struct {
	Name           string
	HeaderEnumName string
	Usage          EnumUsage
	Values         []EnumeratedValue
}

// EnumeratedValue binds a bit pattern to a symbolic name. Entries with
// IsDefault set carry no meaningful Value until ExpandDefault replaces them.
type EnumeratedValue struct {
	Name      string
	Value     uint64
	IsDefault bool
}
