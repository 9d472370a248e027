package svd

import (
	"fmt"
	"strings"
)

// AccessType is the access mode of a peripheral, register, cluster or field.
type AccessType int

const (
	AccessUndefined AccessType = iota
	ReadOnly
	WriteOnly
	ReadWrite
	WriteOnce
	ReadWriteOnce
)

var accessNames = [...]string{
	AccessUndefined: "undefined",
	ReadOnly:        "read-only",
	WriteOnly:       "write-only",
	ReadWrite:       "read-write",
	WriteOnce:       "writeOnce",
	ReadWriteOnce:   "read-writeOnce",
}

func (a AccessType) String() string { return tokenName(accessNames[:], int(a)) }

// ProtectionType is the security protection level. The zero value means any
// protection is accepted.
type ProtectionType int

const (
	ProtectionAny ProtectionType = iota
	Secure
	NonSecure
	Privileged
)

var protectionNames = [...]string{
	ProtectionAny: "any",
	Secure:        "secure",
	NonSecure:     "non-secure",
	Privileged:    "privileged",
}

func (p ProtectionType) String() string { return tokenName(protectionNames[:], int(p)) }

// AddressBlockUsage classifies an address block.
type AddressBlockUsage int

const (
	BlockUsageUndefined AddressBlockUsage = iota
	BlockRegisters
	BlockBuffer
	BlockReserved
)

var blockUsageNames = [...]string{
	BlockUsageUndefined: "undefined",
	BlockRegisters:      "registers",
	BlockBuffer:         "buffer",
	BlockReserved:       "reserved",
}

func (u AddressBlockUsage) String() string { return tokenName(blockUsageNames[:], int(u)) }

// ModifiedWriteValues describes how a write changes the stored value. The zero
// value is a plain modify.
type ModifiedWriteValues int

const (
	WriteModify ModifiedWriteValues = iota
	WriteOneToClear
	WriteOneToSet
	WriteOneToToggle
	WriteZeroToClear
	WriteZeroToSet
	WriteZeroToToggle
	WriteClear
	WriteSet
)

var modifiedWriteNames = [...]string{
	WriteModify:       "modify",
	WriteOneToClear:   "oneToClear",
	WriteOneToSet:     "oneToSet",
	WriteOneToToggle:  "oneToToggle",
	WriteZeroToClear:  "zeroToClear",
	WriteZeroToSet:    "zeroToSet",
	WriteZeroToToggle: "zeroToToggle",
	WriteClear:        "clear",
	WriteSet:          "set",
}

func (m ModifiedWriteValues) String() string { return tokenName(modifiedWriteNames[:], int(m)) }

// ReadAction is the side effect of a read. The zero value means none.
type ReadAction int

const (
	ReadActionNone ReadAction = iota
	ReadClear
	ReadSet
	ReadModify
	ReadModifyExternal
)

var readActionNames = [...]string{
	ReadActionNone:     "none",
	ReadClear:          "clear",
	ReadSet:            "set",
	ReadModify:         "modify",
	ReadModifyExternal: "modifyExternal",
}

func (r ReadAction) String() string { return tokenName(readActionNames[:], int(r)) }

// DataType is the optional C type tag of a register. The zero value means the
// register has none.
type DataType int

const (
	DataTypeNone DataType = iota
	Uint8
	Uint16
	Uint32
	Uint64
	Int8
	Int16
	Int32
	Int64
	Uint8Ptr
	Uint16Ptr
	Uint32Ptr
	Uint64Ptr
	Int8Ptr
	Int16Ptr
	Int32Ptr
	Int64Ptr
)

var dataTypeNames = [...]string{
	DataTypeNone: "",
	Uint8:        "uint8_t",
	Uint16:       "uint16_t",
	Uint32:       "uint32_t",
	Uint64:       "uint64_t",
	Int8:         "int8_t",
	Int16:        "int16_t",
	Int32:        "int32_t",
	Int64:        "int64_t",
	Uint8Ptr:     "uint8_t *",
	Uint16Ptr:    "uint16_t *",
	Uint32Ptr:    "uint32_t *",
	Uint64Ptr:    "uint64_t *",
	Int8Ptr:      "int8_t *",
	Int16Ptr:     "int16_t *",
	Int32Ptr:     "int32_t *",
	Int64Ptr:     "int64_t *",
}

func (d DataType) String() string { return tokenName(dataTypeNames[:], int(d)) }

// DataTypeByName maps a C type spelling ("uint32_t", "int8_t *") to a DataType.
// Matching is case-insensitive; the empty string maps to DataTypeNone.
func DataTypeByName(name string) (DataType, bool) {
	for i, n := range dataTypeNames {
		if strings.EqualFold(n, name) {
			return DataType(i), true
		}
	}
	return DataTypeNone, false
}

// EnumUsage tells whether an enumerated value container applies to reads,
// writes or both.
type EnumUsage int

const (
	EnumUsageUndefined EnumUsage = iota
	EnumRead
	EnumWrite
	EnumReadWrite
)

var enumUsageNames = [...]string{
	EnumUsageUndefined: "undefined",
	EnumRead:           "read",
	EnumWrite:          "write",
	EnumReadWrite:      "read-write",
}

func (u EnumUsage) String() string { return tokenName(enumUsageNames[:], int(u)) }

func tokenName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("token(%d)", i)
	}
	return names[i]
}
