package convert

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/joshuapare/regset/pkg/types"
)

// Convert parses raw under the grammar of kind. The returned value's
// concrete type always matches kind.
func Convert(raw string, kind types.ValueKind) (types.Value, error) {
	switch kind {
	case types.KindString:
		return types.String(raw), nil

	case types.KindExpandString:
		return types.ExpandString(raw), nil

	case types.KindDWord:
		n, err := parseInt(raw, 32)
		if err != nil {
			return nil, valueError(err, raw, kind)
		}
		return types.DWord(int32(n)), nil

	case types.KindQWord:
		n, err := parseInt(raw, 64)
		if err != nil {
			return nil, valueError(err, raw, kind)
		}
		return types.QWord(n), nil

	case types.KindMultiString:
		return types.MultiString(strings.Split(raw, MultiStringSeparator)), nil

	case types.KindBinary:
		b, err := parseBytes(raw)
		if err != nil {
			return nil, valueError(err, raw, kind)
		}
		return types.Binary(b), nil

	default:
		return nil, types.Newf(types.ErrKindInvalidArgument, "cannot convert value for unsupported registry type %s", kind)
	}
}

// parseInt parses a signed decimal integer of the given width, or an
// unsigned 0x-prefixed hex integer whose bit pattern is reinterpreted at
// that width (0xFFFFFFFF is -1 as a DWord).
func parseInt(s string, bits int) (int64, error) {
	s = strings.TrimSpace(s)
	if hex, ok := cutHexPrefix(s); ok {
		u, err := strconv.ParseUint(hex, 16, bits)
		if err != nil {
			return 0, err
		}
		if bits == 32 {
			return int64(int32(uint32(u))), nil
		}
		return int64(u), nil
	}
	return strconv.ParseInt(s, 10, bits)
}

// parseBytes parses comma separated byte tokens, dropping empty tokens.
func parseBytes(s string) ([]byte, error) {
	parts := strings.Split(s, BinarySeparator)
	buf := make([]byte, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		b, err := parseByte(p)
		if err != nil {
			return nil, &tokenError{token: p, err: err}
		}
		buf = append(buf, b)
	}
	return buf, nil
}

func parseByte(s string) (byte, error) {
	s = strings.TrimSpace(s)
	if hex, ok := cutHexPrefix(s); ok {
		u, err := strconv.ParseUint(hex, 16, 8)
		return byte(u), err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	// Negative or >255 decimal is out of range, not malformed.
	if n < 0 || n > math.MaxUint8 {
		return 0, &strconv.NumError{Func: "ParseUint", Num: s, Err: strconv.ErrRange}
	}
	return byte(n), nil
}

func cutHexPrefix(s string) (string, bool) {
	if len(s) > len(HexPrefix) && strings.EqualFold(s[:len(HexPrefix)], HexPrefix) {
		return s[len(HexPrefix):], true
	}
	return s, false
}

// tokenError records which Binary token failed.
type tokenError struct {
	token string
	err   error
}

func (e *tokenError) Error() string { return "byte " + strconv.Quote(e.token) + ": " + e.err.Error() }
func (e *tokenError) Unwrap() error { return e.err }

// valueError classifies a strconv failure as Overflow or FormatError.
func valueError(err error, raw string, kind types.ValueKind) error {
	if errors.Is(err, strconv.ErrRange) {
		return types.Wrapf(types.ErrKindOverflow, err,
			"value %q is too large or too small for registry type %s", raw, kind)
	}
	return types.Wrapf(types.ErrKindFormat, err,
		"value %q is not in a correct format for registry type %s", raw, kind)
}
