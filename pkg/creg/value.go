package creg

import (
	"unicode/utf16"

	"github.com/joshuapare/creg/internal/codepage"
	"github.com/joshuapare/creg/internal/format"
)

// RegType identifies a value's on-disk type tag.
type RegType = format.RegType

// Known value types, re-exported from internal/format for public use.
const (
	RegNone     = format.RegNone
	RegSZ       = format.RegSZ
	RegExpandSZ = format.RegExpandSZ
	RegBinary   = format.RegBinary
	RegDWORD    = format.RegDWORD
	RegDWORDBE  = format.RegDWORDBE
	RegLink     = format.RegLink
	RegMultiSZ  = format.RegMultiSZ
	RegQWORD    = format.RegQWORD
)

// Value is a handle to one (name, type, data) triple attached to a key.
type Value struct {
	file  *File
	entry format.ValueEntry
}

// Name returns the value's decoded name ("" for the key's default value).
func (v *Value) Name() string {
	name, err := codepage.Decode(v.entry.Name, v.file.GetCodepage())
	if err != nil {
		return ""
	}
	return name
}

// Type returns the value's declared registry type.
func (v *Value) Type() RegType { return v.entry.Type }

// DataSize returns the number of raw data bytes stored for this value.
func (v *Value) DataSize() int { return len(v.entry.Data) }

// Data returns an opaque copy of the value's raw bytes, whatever its type.
func (v *Value) Data() []byte { return v.entry.AsBinary() }

// AsU32 interprets the value as a 32-bit integer honoring its declared byte
// order. The bool result is true when the on-disk data_size didn't match the
// required 4 bytes (the value was zero-padded or truncated to compensate).
func (v *Value) AsU32() (value uint32, corrupted bool) { return v.entry.AsU32() }

// AsU64 interprets the value as a little-endian 64-bit integer. The bool
// result is true when the on-disk data_size wasn't exactly 8 bytes.
func (v *Value) AsU64() (value uint64, corrupted bool) { return v.entry.AsU64() }

// UTF8String decodes the value's data through the hive's codepage, dropping
// one trailing NUL terminator if present. Use for RegSZ, RegExpandSZ and
// RegLink values; empty data yields "".
func (v *Value) UTF8String() (string, error) {
	s, err := codepage.Decode(v.entry.Data, v.file.GetCodepage())
	if err != nil {
		return "", &Error{Kind: ErrKindConversion, Msg: "decoding string value", Err: err}
	}
	if len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s, nil
}

// UTF16String returns the same decoded text as UTF8String, re-encoded as
// UTF-16 code units — the wide-string accessor pair named in the external
// interface, kept alongside the byte-string form.
func (v *Value) UTF16String() ([]uint16, error) {
	s, err := v.UTF8String()
	if err != nil {
		return nil, err
	}
	return utf16.Encode([]rune(s)), nil
}

// MultiStrings splits RegMultiSZ data on codepage-decoded NUL code points
// into its component strings.
func (v *Value) MultiStrings() ([]string, error) {
	full, err := v.UTF8String()
	if err != nil {
		return nil, err
	}
	full = trimTrailingNUL(full)
	if full == "" {
		return nil, nil
	}
	return splitNUL(full), nil
}

func trimTrailingNUL(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}

func splitNUL(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == 0 {
			out = append(out, s[start:i])
			start = i + len(string(r))
		}
	}
	out = append(out, s[start:])
	return out
}

// BinaryData returns an opaque copy of the value's raw bytes, for RegBinary
// and any unrecognized type.
func (v *Value) BinaryData() []byte { return v.entry.AsBinary() }

// IsCorrupted reports whether this value's declared type and on-disk size
// disagreed, requiring a zero-pad or truncation to satisfy AsU32/AsU64.
func (v *Value) IsCorrupted() bool {
	_, c32 := v.entry.AsU32()
	if v.entry.Type == format.RegDWORD || v.entry.Type == format.RegDWORDBE {
		return c32
	}
	if v.entry.Type == format.RegQWORD {
		_, c64 := v.entry.AsU64()
		return c64
	}
	return false
}
