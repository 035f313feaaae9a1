package types

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindNone             ErrKind = iota // no error; used by successful results
	ErrKindInvalidArgument                 // malformed path, unknown hive/type, empty required field
	ErrKindFormat                          // raw text does not parse under the declared type
	ErrKindOverflow                        // numeric text parses but exceeds the target width
	ErrKindPermissionDenied                // process lacks rights to create/open/write the key
	ErrKindNotFound                        // key could not be created and none could be read back
	ErrKindIO                              // any other OS-level failure
	ErrKindUnknown                         // unexpected failure
)

// String implements the Stringer interface for ErrKind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindNone:
		return "None"
	case ErrKindInvalidArgument:
		return "InvalidArgument"
	case ErrKindFormat:
		return "FormatError"
	case ErrKindOverflow:
		return "Overflow"
	case ErrKindPermissionDenied:
		return "PermissionDenied"
	case ErrKindNotFound:
		return "NotFound"
	case ErrKindIO:
		return "IoError"
	case ErrKindUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same kind, so that
// errors.Is(err, ErrOverflow) matches any overflow regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Newf builds a *Error of the given kind with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrapf is Newf with an underlying cause.
func Wrapf(kind ErrKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the ErrKind carried by err. A nil error is ErrKindNone and
// an error without a *Error in its chain is ErrKindUnknown.
func KindOf(err error) ErrKind {
	if err == nil {
		return ErrKindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// Sentinels for errors.Is matching. They compare by Kind only.
var (
	ErrInvalidArgument  = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid argument"}
	ErrFormat           = &Error{Kind: ErrKindFormat, Msg: "malformed value"}
	ErrOverflow         = &Error{Kind: ErrKindOverflow, Msg: "value out of range"}
	ErrPermissionDenied = &Error{Kind: ErrKindPermissionDenied, Msg: "permission denied"}
	ErrNotFound         = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	ErrIO               = &Error{Kind: ErrKindIO, Msg: "registry I/O error"}
	ErrUnknown          = &Error{Kind: ErrKindUnknown, Msg: "unexpected error"}
)

// -----------------------------------------------------------------------------
// Hives
// -----------------------------------------------------------------------------

// Hive identifies one of the five predefined registry roots.
type Hive int

const (
	HiveInvalid Hive = iota
	HiveCurrentUser
	HiveLocalMachine
	HiveClassesRoot
	HiveUsers
	HiveCurrentConfig
)

// Hives lists every valid Hive in a stable order.
var Hives = []Hive{HiveCurrentUser, HiveLocalMachine, HiveClassesRoot, HiveUsers, HiveCurrentConfig}

// String returns the canonical HKEY_ name of the hive.
func (h Hive) String() string {
	switch h {
	case HiveCurrentUser:
		return "HKEY_CURRENT_USER"
	case HiveLocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case HiveClassesRoot:
		return "HKEY_CLASSES_ROOT"
	case HiveUsers:
		return "HKEY_USERS"
	case HiveCurrentConfig:
		return "HKEY_CURRENT_CONFIG"
	default:
		return fmt.Sprintf("Hive(%d)", int(h))
	}
}

// Short returns the common abbreviation (HKCU, HKLM, ...).
func (h Hive) Short() string {
	switch h {
	case HiveCurrentUser:
		return "HKCU"
	case HiveLocalMachine:
		return "HKLM"
	case HiveClassesRoot:
		return "HKCR"
	case HiveUsers:
		return "HKU"
	case HiveCurrentConfig:
		return "HKCC"
	default:
		return ""
	}
}

// Valid reports whether h is one of the five predefined roots.
func (h Hive) Valid() bool {
	return h >= HiveCurrentUser && h <= HiveCurrentConfig
}

// -----------------------------------------------------------------------------
// Value kinds
// -----------------------------------------------------------------------------

// ValueKind enumerates the registry value types this module can set.
// (The numbers align with the Windows REG_* definitions.)
type ValueKind uint32

const (
	KindString       ValueKind = 1  // REG_SZ
	KindExpandString ValueKind = 2  // REG_EXPAND_SZ
	KindBinary       ValueKind = 3  // REG_BINARY
	KindDWord        ValueKind = 4  // REG_DWORD
	KindMultiString  ValueKind = 7  // REG_MULTI_SZ
	KindQWord        ValueKind = 11 // REG_QWORD
)

// Kinds lists every settable ValueKind in the order they are documented.
var Kinds = []ValueKind{KindString, KindExpandString, KindBinary, KindDWord, KindMultiString, KindQWord}

// String returns the type name accepted by the converter (e.g. "DWord").
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindExpandString:
		return "ExpandString"
	case KindBinary:
		return "Binary"
	case KindDWord:
		return "DWord"
	case KindMultiString:
		return "MultiString"
	case KindQWord:
		return "QWord"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint32(k))
	}
}

// RegName returns the Windows REG_* spelling of the kind.
func (k ValueKind) RegName() string {
	switch k {
	case KindString:
		return "REG_SZ"
	case KindExpandString:
		return "REG_EXPAND_SZ"
	case KindBinary:
		return "REG_BINARY"
	case KindDWord:
		return "REG_DWORD"
	case KindMultiString:
		return "REG_MULTI_SZ"
	case KindQWord:
		return "REG_QWORD"
	default:
		// Signed, to match how regedit prints unknown types
		return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(k))
	}
}

// Valid reports whether k is one of the settable kinds.
func (k ValueKind) Valid() bool {
	switch k {
	case KindString, KindExpandString, KindBinary, KindDWord, KindMultiString, KindQWord:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Typed values
// -----------------------------------------------------------------------------

// Value is a converted payload ready for the registry API. The concrete
// type always agrees with Kind(); the set of implementations is closed.
type Value interface {
	Kind() ValueKind
	isValue()
}

type (
	// String is a REG_SZ payload.
	String string
	// ExpandString is a REG_EXPAND_SZ payload; %VAR% references are stored unexpanded.
	ExpandString string
	// DWord is a REG_DWORD payload.
	DWord int32
	// QWord is a REG_QWORD payload.
	QWord int64
	// MultiString is a REG_MULTI_SZ payload. Empty elements are significant.
	MultiString []string
	// Binary is a REG_BINARY payload.
	Binary []byte
)

func (String) Kind() ValueKind       { return KindString }
func (ExpandString) Kind() ValueKind { return KindExpandString }
func (DWord) Kind() ValueKind        { return KindDWord }
func (QWord) Kind() ValueKind        { return KindQWord }
func (MultiString) Kind() ValueKind  { return KindMultiString }
func (Binary) Kind() ValueKind       { return KindBinary }

func (String) isValue()       {}
func (ExpandString) isValue() {}
func (DWord) isValue()        {}
func (QWord) isValue()        {}
func (MultiString) isValue()  {}
func (Binary) isValue()       {}
