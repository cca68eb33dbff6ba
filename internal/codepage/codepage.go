// Package codepage decodes the ANSI byte strings stored in a hive's key and
// value names, and implements the Unicode-aware, codepage-tolerant name
// comparison and hashing used for child and value lookup.
package codepage

import (
	"fmt"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// ID identifies an accepted codepage. The zero value is invalid; use Default
// for "no codepage specified yet".
type ID uint16

// Accepted codepages, per the "ASCII codepage" external interface: ASCII
// (20127) and the Windows single/double-byte codepages actually exercised by
// Windows 9x/Me locales.
const (
	ASCII       ID = 20127
	Windows874  ID = 874
	Windows932  ID = 932 // Shift-JIS
	Windows936  ID = 936 // GBK
	Windows949  ID = 949 // EUC-KR
	Windows950  ID = 950 // Big5
	Windows1250 ID = 1250
	Windows1251 ID = 1251
	Windows1252 ID = 1252
	Windows1253 ID = 1253
	Windows1254 ID = 1254
	Windows1255 ID = 1255
	Windows1256 ID = 1256
	Windows1257 ID = 1257
	Windows1258 ID = 1258

	// Default is the codepage a freshly opened handle starts with when the
	// caller hasn't chosen one.
	Default = Windows1252
)

// ErrUnsupported is returned by Parse and Decode for a codepage ID or name
// outside the accepted set.
var ErrUnsupported = fmt.Errorf("codepage: unsupported codepage")

// names maps the literal option strings accepted at the external interface
// (CLI flags, OpenOptions) to their codepage ID.
var names = map[string]ID{
	"ascii":        ASCII,
	"windows-874":  Windows874,
	"windows-932":  Windows932,
	"windows-936":  Windows936,
	"windows-949":  Windows949,
	"windows-950":  Windows950,
	"windows-1250": Windows1250,
	"windows-1251": Windows1251,
	"windows-1252": Windows1252,
	"windows-1253": Windows1253,
	"windows-1254": Windows1254,
	"windows-1255": Windows1255,
	"windows-1256": Windows1256,
	"windows-1257": Windows1257,
	"windows-1258": Windows1258,
}

// Parse resolves a literal codepage name (e.g. "windows-1252") to an ID.
// Unknown names return ErrUnsupported; the caller is responsible for falling
// back to Default and warning, per the external-interface contract.
func Parse(name string) (ID, error) {
	if id, ok := names[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupported, name)
}

// charmapTable covers the single-byte Windows codepages via golang.org/x/text's
// precomputed tables.
var charmapTable = map[ID]*charmap.Charmap{
	Windows874:  charmap.Windows874,
	Windows1250: charmap.Windows1250,
	Windows1251: charmap.Windows1251,
	Windows1252: charmap.Windows1252,
	Windows1253: charmap.Windows1253,
	Windows1254: charmap.Windows1254,
	Windows1255: charmap.Windows1255,
	Windows1256: charmap.Windows1256,
	Windows1257: charmap.Windows1257,
	Windows1258: charmap.Windows1258,
}

// multiByteTable covers the CJK double-byte codepages via their dedicated
// x/text subpackages.
var multiByteTable = map[ID]encoding.Encoding{
	Windows932: japanese.ShiftJIS,
	Windows936: simplifiedchinese.GBK,
	Windows949: korean.EUCKR,
	Windows950: traditionalchinese.Big5,
}

// Decode converts raw ANSI-encoded bytes to a UTF-8 string using cp. ASCII is
// handled as a fast path since it never needs a decoder; everything else
// delegates to the matching x/text encoding.
func Decode(data []byte, cp ID) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if cp == ASCII {
		if isASCII(data) {
			return string(data), nil
		}
		return "", fmt.Errorf("codepage: byte 0x%02x is not valid ASCII", firstNonASCII(data))
	}
	if cm, ok := charmapTable[cp]; ok {
		if isASCII(data) {
			return string(data), nil
		}
		decoded, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("codepage: windows-%d decode: %w", cp, err)
		}
		return string(decoded), nil
	}
	if enc, ok := multiByteTable[cp]; ok {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("codepage: windows-%d decode: %w", cp, err)
		}
		return string(decoded), nil
	}
	return "", fmt.Errorf("%w: id %d", ErrUnsupported, cp)
}

// Supported reports whether cp is in the accepted set (ASCII plus the
// cataloged Windows single- and double-byte codepages).
func Supported(cp ID) bool {
	if cp == ASCII {
		return true
	}
	if _, ok := charmapTable[cp]; ok {
		return true
	}
	_, ok := multiByteTable[cp]
	return ok
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

func firstNonASCII(b []byte) byte {
	for _, c := range b {
		if c >= 0x80 {
			return c
		}
	}
	return 0
}

// DecodeUTF16 converts little-endian UTF-16 bytes (as used for the wide
// accessor variants) to a UTF-8 string, trimming one trailing NUL code unit
// if present.
func DecodeUTF16(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if len(data)%2 != 0 {
		return "", fmt.Errorf("codepage: utf16 data has odd length %d", len(data))
	}
	if len(data) >= 2 && data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return string(utf16.Decode(units)), nil
}

// Hash computes the CREG name hash: h = 0; for each Unicode code point c (in
// order), h = h*37 + toupper(c), wrapping at 32 bits. It is used both as a
// fast-reject filter before a full name comparison and to accelerate child
// and value lookup by name.
func Hash(name string) uint32 {
	var h uint32
	for _, r := range name {
		h = h*37 + uint32(unicode.ToUpper(r))
	}
	return h
}

// EqualFold reports whether a and b are the same string under full Unicode
// case folding — the comparison keyitem.MatchName performs once hash hints don't
// rule a match out.
func EqualFold(a, b string) bool {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if unicode.ToUpper(ra[i]) != unicode.ToUpper(rb[i]) {
			return false
		}
	}
	return true
}
