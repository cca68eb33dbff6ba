package format

import (
	"fmt"

	"github.com/joshuapare/creg/internal/buf"
)

// ValueEntry is one decoded (type, name, data) triple. Name and Data are
// copies, not slices into the data block's cache-resident buffer — callers
// may hold a ValueEntry long after its data block has been evicted.
type ValueEntry struct {
	// Offset is this entry's offset from the start of its key-name entry
	// (header and name included), recorded for diagnostics.
	Offset uint32

	Type RegType
	Name []byte
	Data []byte

	// Corrupted is set when a fixed-width value's on-disk data_size
	// disagreed with its declared type; the returned Data is still usable
	// (zero-padded or truncated) but the caller is told to distrust it.
	Corrupted bool
}

// IsDefault reports whether this is the enclosing key's default value (an
// empty name).
func (v ValueEntry) IsDefault() bool { return len(v.Name) == 0 }

// ParseValueEntry decodes one value entry from b at offset 0 and returns it
// along with the number of bytes it consumed (12 + name_size + data_size),
// so the caller can advance to the next entry.
func ParseValueEntry(b []byte, offset uint32) (ValueEntry, int, error) {
	raw, ok := buf.Slice(b, 0, ValueEntryHeaderSize)
	if !ok {
		return ValueEntry{}, 0, fmt.Errorf("%w: value entry header needs %d bytes, have %d", ErrTruncated, ValueEntryHeaderSize, len(b))
	}
	typ := RegType(buf.U32LE(raw[0:4]))
	nameSize := int(buf.U16LE(raw[8:10]))
	dataSize := int(buf.U16LE(raw[10:12]))

	total := ValueEntryHeaderSize + nameSize + dataSize
	body, ok := buf.Slice(b, ValueEntryHeaderSize, nameSize+dataSize)
	if !ok {
		return ValueEntry{}, 0, fmt.Errorf("%w: value entry name+data needs %d bytes, have %d", ErrTruncated, nameSize+dataSize, len(b)-ValueEntryHeaderSize)
	}

	name := append([]byte(nil), body[:nameSize]...)
	data := append([]byte(nil), body[nameSize:]...)

	return ValueEntry{
		Offset: offset,
		Type:   typ,
		Name:   name,
		Data:   data,
	}, total, nil
}

// AsU32 interprets Data as a 32-bit integer, honoring the entry's declared
// byte order (RegDWORD little-endian, RegDWORDBE big-endian; anything else
// is treated as little-endian). Data shorter than 4 bytes is conceptually
// zero-padded and the second return value is true ("corrupted"); longer data
// is truncated to the first 4 bytes and likewise flagged.
func (v ValueEntry) AsU32() (uint32, bool) {
	var word [4]byte
	copy(word[:], v.Data)
	corrupted := len(v.Data) != 4
	if v.Type == RegDWORDBE {
		return buf.U32BE(word[:]), corrupted
	}
	return buf.U32LE(word[:]), corrupted
}

// AsU64 interprets Data as a little-endian 64-bit integer. Data that is not
// exactly 8 bytes is zero-padded or truncated and flagged corrupted, the
// same convention as AsU32.
func (v ValueEntry) AsU64() (uint64, bool) {
	var word [8]byte
	copy(word[:], v.Data)
	return buf.U64LE(word[:]), len(v.Data) != 8
}

// AsBinary returns an opaque copy of the value's data bytes.
func (v ValueEntry) AsBinary() []byte {
	return append([]byte(nil), v.Data...)
}
