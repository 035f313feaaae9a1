package regtext

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
)

var errUnsupportedEncoding = errors.New("unsupported .reg output encoding")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// encodeUTF16LE encodes s as UTF-16LE, optionally prefixed with a BOM.
func encodeUTF16LE(s string, withBOM bool) ([]byte, error) {
	out, err := utf16le.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}
	if !withBOM {
		return []byte(out), nil
	}
	buf := make([]byte, 0, len(UTF16LEBOM)+len(out))
	buf = append(buf, UTF16LEBOM...)
	return append(buf, out...), nil
}

// encodeUTF16LEZeroTerminated encodes s as UTF-16LE followed by a NUL code unit,
// the on-disk layout of REG_SZ and REG_EXPAND_SZ data.
func encodeUTF16LEZeroTerminated(s string) ([]byte, error) {
	return encodeUTF16LE(s+"\x00", false)
}

// encodeMultiString encodes a REG_MULTI_SZ payload: each element
// NUL-terminated, then a final NUL. Empty elements are kept.
func encodeMultiString(values []string) ([]byte, error) {
	var buf []byte
	for _, v := range values {
		enc, err := encodeUTF16LEZeroTerminated(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc...)
	}
	return append(buf, 0x00, 0x00), nil
}
