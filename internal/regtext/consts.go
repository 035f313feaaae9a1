package regtext

// Tokens of the regedit 5.00 export format.
const (
	RegFileHeader      = "Windows Registry Editor Version 5.00"
	KeyOpenBracket     = "["
	KeyCloseBracket    = "]"
	ValueAssignment    = "="
	DefaultValuePrefix = "@="

	Quote            = "\""
	Backslash        = "\\"
	EscapedQuote     = "\\\""
	EscapedBackslash = "\\\\"
	CRLF             = "\r\n"
)

// Value data prefixes. String values are quoted and carry no prefix.
const (
	DWORDPrefix       = "dword:"
	HexPrefix         = "hex:"    // REG_BINARY
	HexExpandSZPrefix = "hex(2):" // REG_EXPAND_SZ, UTF-16LE with terminator
	HexMultiSZPrefix  = "hex(7):" // REG_MULTI_SZ, UTF-16LE with double terminator
	HexQWORDPrefix    = "hex(b):" // REG_QWORD, 8 bytes little-endian
)

const (
	HexByteSeparator = ","
	HexByteFormat    = "%02x"
	DWORDHexFormat   = "%08x"
	QWORDSize        = 8
)

// Output encodings accepted by Options.Encoding.
const (
	EncodingUTF8    = "UTF-8"
	EncodingUTF16LE = "UTF-16LE"
)

// UTF16LEBOM is the byte order mark regedit writes at the start of
// UTF-16LE exports.
var UTF16LEBOM = []byte{0xFF, 0xFE}
