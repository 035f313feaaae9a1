// Package convert maps user-supplied type names and raw text onto typed
// registry values.
//
// Raw text grammar per kind:
//
//	String, ExpandString  taken verbatim
//	DWord                 decimal int32, or 0x-prefixed hex up to 32 bits
//	QWord                 decimal int64, or 0x-prefixed hex up to 64 bits
//	MultiString           elements separated by '|'; empty elements kept
//	Binary                bytes separated by ','; each decimal or 0x hex; empty tokens skipped
package convert

import (
	"strings"

	"github.com/joshuapare/regset/pkg/types"
)

const (
	// MultiStringSeparator separates MultiString elements in raw text.
	MultiStringSeparator = "|"
	// BinarySeparator separates byte tokens in raw text.
	BinarySeparator = ","
	// HexPrefix selects hexadecimal parsing for integer and byte tokens.
	HexPrefix = "0x"
)

var kindNames = map[string]types.ValueKind{
	"STRING":       types.KindString,
	"EXPANDSTRING": types.KindExpandString,
	"BINARY":       types.KindBinary,
	"DWORD":        types.KindDWord,
	"MULTISTRING":  types.KindMultiString,
	"QWORD":        types.KindQWord,
}

// ParseKind resolves a case-insensitive type name such as "dword" or
// " MultiString ".
func ParseKind(typeName string) (types.ValueKind, error) {
	name := strings.ToUpper(strings.TrimSpace(typeName))
	if name == "" {
		return 0, types.Newf(types.ErrKindInvalidArgument, "value type cannot be empty")
	}
	if k, ok := kindNames[name]; ok {
		return k, nil
	}
	return 0, types.Newf(types.ErrKindInvalidArgument,
		"unsupported registry value type: %q; supported types are %s", typeName, SupportedTypes())
}

// SupportedTypes returns the accepted type names, comma separated.
func SupportedTypes() string {
	names := make([]string, len(types.Kinds))
	for i, k := range types.Kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
