package svdxml

import (
	"fmt"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// TokenError reports an enumerated SVD value outside the schema.
type TokenError struct {
	Element string
	Token   string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("svdxml: invalid <%s> value %q", e.Element, e.Token)
}

var accessNames = map[string]svd.AccessType{
	"read-only":      svd.ReadOnly,
	"write-only":     svd.WriteOnly,
	"read-write":     svd.ReadWrite,
	"writeOnce":      svd.WriteOnce,
	"read-writeOnce": svd.ReadWriteOnce,
}

var protectionNames = map[string]svd.ProtectionType{
	"s": svd.Secure,
	"n": svd.NonSecure,
	"p": svd.Privileged,
}

var blockUsageNames = map[string]svd.AddressBlockUsage{
	"registers": svd.BlockRegisters,
	"buffer":    svd.BlockBuffer,
	"reserved":  svd.BlockReserved,
}

var modifiedWriteNames = map[string]svd.ModifiedWriteValues{
	"oneToClear":   svd.WriteOneToClear,
	"oneToSet":     svd.WriteOneToSet,
	"oneToToggle":  svd.WriteOneToToggle,
	"zeroToClear":  svd.WriteZeroToClear,
	"zeroToSet":    svd.WriteZeroToSet,
	"zeroToToggle": svd.WriteZeroToToggle,
	"clear":        svd.WriteClear,
	"set":          svd.WriteSet,
	"modify":       svd.WriteModify,
}

var readActionNames = map[string]svd.ReadAction{
	"clear":          svd.ReadClear,
	"set":            svd.ReadSet,
	"modify":         svd.ReadModify,
	"modifyExternal": svd.ReadModifyExternal,
}

var enumUsageNames = map[string]svd.EnumUsage{
	"read":       svd.EnumRead,
	"write":      svd.EnumWrite,
	"read-write": svd.EnumReadWrite,
}

// token translates an optional element value. Absent elements yield def.
func token[T any](element string, table map[string]T, v *string, def T) (T, error) {
	if v == nil {
		return def, nil
	}
	t, ok := table[str(v)]
	if !ok {
		return def, &TokenError{Element: element, Token: str(v)}
	}
	return t, nil
}

func dataType(v *string) (svd.DataType, error) {
	if v == nil {
		return svd.DataTypeNone, nil
	}
	dt, ok := svd.DataTypeByName(str(v))
	if !ok {
		return svd.DataTypeNone, &TokenError{Element: "dataType", Token: str(v)}
	}
	return dt, nil
}
