// Package regpath parses hive-qualified registry paths such as
// `HKCU\Software\MyApp` into a hive and a subkey path.
package regpath

import (
	"strings"

	"github.com/joshuapare/regset/pkg/types"
)

// Separator is the registry key path separator.
const Separator = `\`

// aliases maps a normalized hive token (upper-case, trailing colon removed)
// to its hive. Both the HKEY_ names and the PowerShell-style abbreviations
// are accepted.
var aliases = map[string]types.Hive{
	"HKEY_CURRENT_USER":   types.HiveCurrentUser,
	"HKCU":                types.HiveCurrentUser,
	"HKEY_LOCAL_MACHINE":  types.HiveLocalMachine,
	"HKLM":                types.HiveLocalMachine,
	"HKEY_CLASSES_ROOT":   types.HiveClassesRoot,
	"HKCR":                types.HiveClassesRoot,
	"HKEY_USERS":          types.HiveUsers,
	"HKU":                 types.HiveUsers,
	"HKEY_CURRENT_CONFIG": types.HiveCurrentConfig,
	"HKCC":                types.HiveCurrentConfig,
}

// Resolve splits path into its hive and subkey. The subkey has no leading,
// trailing or doubled separators and is empty when path names a hive root.
//
// Unknown hives are rejected rather than defaulted, so an abbreviated path
// such as `Software\MyApp` fails instead of silently landing in HKLM.
func Resolve(path string) (types.Hive, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return types.HiveInvalid, "", types.Newf(types.ErrKindInvalidArgument, "registry path cannot be empty")
	}

	token, rest, _ := strings.Cut(path, Separator)
	hive, err := LookupHive(token)
	if err != nil {
		return types.HiveInvalid, "", err
	}
	return hive, Clean(rest), nil
}

// LookupHive maps a single hive token (e.g. "hklm:", "HKEY_USERS") to its hive.
func LookupHive(token string) (types.Hive, error) {
	name := strings.ToUpper(strings.TrimSpace(token))
	name = strings.TrimSuffix(name, ":")
	if h, ok := aliases[name]; ok {
		return h, nil
	}
	return types.HiveInvalid, types.Newf(types.ErrKindInvalidArgument,
		"invalid registry hive name: %q; path must start with a valid hive (e.g. HKEY_LOCAL_MACHINE or HKLM)", token)
}

// Clean removes empty path segments, so leading, trailing and repeated
// separators disappear. Segment text is otherwise left untouched; key names
// may legitimately contain spaces and forward slashes.
func Clean(subkey string) string {
	if !strings.Contains(subkey, Separator) {
		return subkey
	}
	parts := strings.Split(subkey, Separator)
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, Separator)
}

// Join renders the canonical HKEY_ form of a hive and subkey.
func Join(h types.Hive, subkey string) string {
	if subkey == "" {
		return h.String()
	}
	return h.String() + Separator + subkey
}
