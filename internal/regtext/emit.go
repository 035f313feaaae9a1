// Package regtext renders registry writes as .reg (regedit export) text.
package regtext

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/joshuapare/regset/internal/regpath"
	"github.com/joshuapare/regset/pkg/types"
)

// Write is a single value assignment to render.
type Write struct {
	Hive   types.Hive
	Subkey string
	Name   string // "" for the default value
	Value  types.Value
}

// Options controls the output encoding.
type Options struct {
	// Encoding is EncodingUTF8 (default) or EncodingUTF16LE.
	Encoding string
	// WithBOM prefixes UTF-16LE output with a byte order mark.
	WithBOM bool
}

// Render emits a complete .reg document applying w.
func Render(w Write, opts Options) ([]byte, error) {
	if !w.Hive.Valid() {
		return nil, types.Newf(types.ErrKindInvalidArgument, "cannot render value under invalid hive %s", w.Hive)
	}
	var buf bytes.Buffer
	buf.WriteString(RegFileHeader + CRLF + CRLF)
	buf.WriteString(KeyOpenBracket)
	buf.WriteString(regpath.Join(w.Hive, w.Subkey))
	buf.WriteString(KeyCloseBracket + CRLF)
	if err := emitValue(&buf, w.Name, w.Value); err != nil {
		return nil, err
	}
	buf.WriteString(CRLF)

	switch strings.ToUpper(opts.Encoding) {
	case "", EncodingUTF8:
		return buf.Bytes(), nil
	case EncodingUTF16LE:
		return encodeUTF16LE(buf.String(), opts.WithBOM)
	default:
		return nil, types.Wrapf(types.ErrKindInvalidArgument, errUnsupportedEncoding, "encoding %q", opts.Encoding)
	}
}

func emitValue(buf *bytes.Buffer, name string, v types.Value) error {
	if name == "" {
		buf.WriteString(DefaultValuePrefix)
	} else {
		buf.WriteString(Quote)
		buf.WriteString(escapeString(name))
		buf.WriteString(Quote + ValueAssignment)
	}

	switch v := v.(type) {
	case types.String:
		buf.WriteString(Quote)
		buf.WriteString(escapeString(string(v)))
		buf.WriteString(Quote)
	case types.ExpandString:
		data, err := encodeUTF16LEZeroTerminated(string(v))
		if err != nil {
			return err
		}
		buf.WriteString(HexExpandSZPrefix)
		buf.WriteString(formatHex(data))
	case types.MultiString:
		data, err := encodeMultiString(v)
		if err != nil {
			return err
		}
		buf.WriteString(HexMultiSZPrefix)
		buf.WriteString(formatHex(data))
	case types.DWord:
		buf.WriteString(DWORDPrefix)
		fmt.Fprintf(buf, DWORDHexFormat, uint32(v))
	case types.QWord:
		data := make([]byte, QWORDSize)
		binary.LittleEndian.PutUint64(data, uint64(v))
		buf.WriteString(HexQWORDPrefix)
		buf.WriteString(formatHex(data))
	case types.Binary:
		buf.WriteString(HexPrefix)
		buf.WriteString(formatHex(v))
	default:
		return types.Newf(types.ErrKindInvalidArgument, "cannot render value of type %T", v)
	}
	buf.WriteString(CRLF)
	return nil
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, Backslash, EscapedBackslash)
	s = strings.ReplaceAll(s, Quote, EscapedQuote)
	return s
}

// formatHex renders bytes as regedit does: lower-case pairs joined by
// commas. An empty payload renders as nothing after the prefix.
func formatHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf(HexByteFormat, b)
	}
	return strings.Join(parts, HexByteSeparator)
}
