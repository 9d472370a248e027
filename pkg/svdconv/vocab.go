package svdconv

import (
	"fmt"

	"github.com/OpenTraceLab/svdparity/pkg/svd"
)

// UnmappedTokenError reports a token outside the closed vocabulary the
// reference tool is known to emit. It means the tool and these tables disagree
// about the vocabulary and is never absorbed into the "no model" result.
type UnmappedTokenError struct {
	Vocabulary string
	Token      string
}

func (e *UnmappedTokenError) Error() string {
	return fmt.Sprintf("svdconv: unmapped %s token %q", e.Vocabulary, e.Token)
}

// UNDEF and END are valid svdconv access tokens but never appear on a
// processed element, so they are deliberately absent.
var accessTokens = map[string]svd.AccessType{
	"READ_ONLY":       svd.ReadOnly,
	"WRITE_ONLY":      svd.WriteOnly,
	"READ_WRITE":      svd.ReadWrite,
	"WRITE_ONCE":      svd.WriteOnce,
	"READ_WRITE_ONCE": svd.ReadWriteOnce,
}

var protectionTokens = map[string]svd.ProtectionType{
	"UNDEF":      svd.ProtectionAny,
	"SECURE":     svd.Secure,
	"NONSECURE":  svd.NonSecure,
	"PRIVILEGED": svd.Privileged,
}

var blockUsageTokens = map[string]svd.AddressBlockUsage{
	"REGISTERS": svd.BlockRegisters,
	"BUFFER":    svd.BlockBuffer,
	"RESERVED":  svd.BlockReserved,
}

var modifiedWriteTokens = map[string]svd.ModifiedWriteValues{
	"undefined":    svd.WriteModify,
	"modify":       svd.WriteModify,
	"oneToClear":   svd.WriteOneToClear,
	"oneToSet":     svd.WriteOneToSet,
	"oneToToggle":  svd.WriteOneToToggle,
	"zeroToClear":  svd.WriteZeroToClear,
	"zeroToSet":    svd.WriteZeroToSet,
	"zeroToToggle": svd.WriteZeroToToggle,
	"clear":        svd.WriteClear,
	"set":          svd.WriteSet,
}

var readActionTokens = map[string]svd.ReadAction{
	"UNDEF":    svd.ReadActionNone,
	"CLEAR":    svd.ReadClear,
	"SET":      svd.ReadSet,
	"MODIFY":   svd.ReadModify,
	"MODIFEXT": svd.ReadModifyExternal,
}

var enumUsageTokens = map[string]svd.EnumUsage{
	"UNDEF":     svd.EnumReadWrite,
	"READ":      svd.EnumRead,
	"WRITE":     svd.EnumWrite,
	"READWRITE": svd.EnumReadWrite,
}

func lookup[T any](vocabulary string, table map[string]T, token string) (T, error) {
	v, ok := table[token]
	if !ok {
		return v, &UnmappedTokenError{Vocabulary: vocabulary, Token: token}
	}
	return v, nil
}

func accessType(token string) (svd.AccessType, error) {
	return lookup("access", accessTokens, token)
}

func protectionType(token string) (svd.ProtectionType, error) {
	return lookup("protection", protectionTokens, token)
}

func blockUsage(token string) (svd.AddressBlockUsage, error) {
	return lookup("address block usage", blockUsageTokens, token)
}

func modifiedWriteValues(token string) (svd.ModifiedWriteValues, error) {
	return lookup("modified write values", modifiedWriteTokens, token)
}

func readAction(token string) (svd.ReadAction, error) {
	return lookup("read action", readActionTokens, token)
}

func enumUsage(token string) (svd.EnumUsage, error) {
	return lookup("enumerated value usage", enumUsageTokens, token)
}

// dataType accepts the C spellings case-insensitively; "" means no data type.
func dataType(token string) (svd.DataType, error) {
	dt, ok := svd.DataTypeByName(token)
	if !ok {
		return dt, &UnmappedTokenError{Vocabulary: "data type", Token: token}
	}
	return dt, nil
}

func elementType(token string) (svd.ElementKind, error) {
	switch token {
	case "register":
		return svd.KindRegister, nil
	case "cluster":
		return svd.KindCluster, nil
	}
	return svd.KindInvalid, &UnmappedTokenError{Vocabulary: "element type", Token: token}
}
