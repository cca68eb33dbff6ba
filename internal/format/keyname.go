package format

import (
	"fmt"

	"github.com/joshuapare/creg/internal/buf"
)

// KeyNameEntry is one decoded key-name record: a key's raw (codepage-encoded)
// name plus its ordered value entries. Name and Values are copies, safe to
// hold past eviction of the data block they were parsed from.
type KeyNameEntry struct {
	// Index identifies this entry within its data block; looked up from a
	// hierarchy record's KeyNameEntryIndex field.
	Index uint16

	Name   []byte
	Values []ValueEntry
}

// ValueAt returns the value entry at the given stable index, matching
// original_source's "i-th value of a key is stable within a session" order.
func (k KeyNameEntry) ValueAt(i int) (ValueEntry, bool) {
	if i < 0 || i >= len(k.Values) {
		return ValueEntry{}, false
	}
	return k.Values[i], true
}

// ParseKeyNameEntry decodes one key-name entry from b at offset 0 and
// returns it along with the number of bytes consumed (its declared Size),
// so the data-block scanner can advance to the next entry.
//
// ErrEndOfChain signals a free/terminator slot (Index == 0xFFFF); callers
// stop iterating rather than treating it as a parse failure.
func ParseKeyNameEntry(b []byte) (KeyNameEntry, int, error) {
	raw, ok := buf.Slice(b, 0, KeyNameEntryHeaderSize)
	if !ok {
		return KeyNameEntry{}, 0, fmt.Errorf("%w: key-name entry header needs %d bytes, have %d", ErrTruncated, KeyNameEntryHeaderSize, len(b))
	}

	size := int(buf.U32LE(raw[0:4]))
	index := buf.U16LE(raw[4:6])
	usedSize := int(buf.U32LE(raw[8:12]))
	nameSize := int(buf.U16LE(raw[12:14]))
	valueCount := int(buf.U16LE(raw[14:16]))

	if index == KeyNameEntryIndexNone {
		return KeyNameEntry{}, 0, ErrEndOfChain
	}
	if size < KeyNameEntryHeaderSize || size > len(b) {
		return KeyNameEntry{}, 0, fmt.Errorf("%w: key-name entry size %d out of range (have %d)", ErrSanityLimit, size, len(b))
	}
	if usedSize < KeyNameEntryHeaderSize || usedSize > size {
		return KeyNameEntry{}, 0, fmt.Errorf("%w: key-name entry used_size %d out of range (size %d)", ErrSanityLimit, usedSize, size)
	}
	if nameSize > size-KeyNameEntryHeaderSize {
		return KeyNameEntry{}, 0, fmt.Errorf("%w: key-name entry name_size %d exceeds body %d", ErrSanityLimit, nameSize, size-KeyNameEntryHeaderSize)
	}

	nameStart := KeyNameEntryHeaderSize
	nameBytes, ok := buf.Slice(b, nameStart, nameSize)
	if !ok {
		return KeyNameEntry{}, 0, fmt.Errorf("%w: key-name entry name needs %d bytes", ErrTruncated, nameSize)
	}
	name := append([]byte(nil), nameBytes...)

	// used_size caps how much of the record's body is meaningful; anything
	// between the end of the parsed value list and size is padding and is
	// ignored, per the on-disk contract.
	valuesRegionEnd := usedSize
	if valuesRegionEnd > size {
		valuesRegionEnd = size
	}

	values := make([]ValueEntry, 0, valueCount)
	pos := nameStart + nameSize
	for i := 0; i < valueCount && pos < valuesRegionEnd; i++ {
		region, ok := buf.Slice(b, pos, valuesRegionEnd-pos)
		if !ok {
			break
		}
		entry, consumed, err := ParseValueEntry(region, uint32(pos))
		if err != nil || consumed <= 0 {
			break
		}
		values = append(values, entry)
		pos += consumed
	}

	return KeyNameEntry{Index: index, Name: name, Values: values}, size, nil
}
