package format

import (
	"fmt"

	"github.com/joshuapare/creg/internal/buf"
)

// RGKNHeader is the decoded sub-header of the key-hierarchy area: a 32-byte
// record at HierarchyAreaOffset describing the area's own size and the
// offset, relative to itself, where the fixed-stride hierarchy entries begin.
type RGKNHeader struct {
	// Size is the total number of bytes in the hierarchy area, RGKN header
	// included.
	Size uint32
	// EntriesOffset is the offset of the first hierarchy entry, relative to
	// the start of the RGKN header.
	EntriesOffset uint32
}

// ParseRGKNHeader decodes the RGKN sub-header from b, which must hold at
// least RGKNHeaderSize bytes at offset 0 (callers pass the slice starting at
// the file's hierarchy_area_offset).
func ParseRGKNHeader(b []byte) (RGKNHeader, error) {
	raw, ok := buf.Slice(b, 0, RGKNHeaderSize)
	if !ok {
		return RGKNHeader{}, fmt.Errorf("%w: RGKN header needs %d bytes, have %d", ErrTruncated, RGKNHeaderSize, len(b))
	}
	if string(raw[0:4]) != SignatureRGKN {
		return RGKNHeader{}, fmt.Errorf("%w: want %q, got %q", ErrSignatureMismatch, SignatureRGKN, raw[0:4])
	}
	size := buf.U32LE(raw[4:8])
	if size < RGKNHeaderSize || size > MemoryMaximum {
		return RGKNHeader{}, fmt.Errorf("%w: RGKN size %d out of range", ErrSanityLimit, size)
	}
	return RGKNHeader{
		Size:          size,
		EntriesOffset: buf.U32LE(raw[8:12]),
	}, nil
}

// HierarchyEntry is one decoded 28-byte key-hierarchy record. Offsets are
// relative to the start of the hierarchy entries region (the RGKN header's
// own position plus its EntriesOffset), with OffsetNone/OffsetNoneAlt meaning
// "no such link".
type HierarchyEntry struct {
	// SelfOffset is this record's own offset within the hierarchy entries
	// region, useful for cycle bookkeeping without recomputing offset/stride.
	SelfOffset uint32

	NameHash          uint32
	ParentOffset      uint32
	FirstChildOffset  uint32
	NextSiblingOffset uint32

	// KeyNameEntryIndex identifies a key-name entry within a data block.
	KeyNameEntryIndex uint16
	// DataBlockNumber selects the data block holding the key-name entry, or
	// equals DataBlockNumberNone when this hierarchy record has none (the
	// synthetic root).
	DataBlockNumber uint16
}

// HasKeyNameEntry reports whether this hierarchy record names an associated
// key-name entry, versus being the rootless synthetic root.
func (h HierarchyEntry) HasKeyNameEntry() bool {
	return h.DataBlockNumber != DataBlockNumberNone
}

// IsTerminalOffset reports whether off is one of the two observed encodings
// of "no further link" for parent/child/sibling fields.
func IsTerminalOffset(off uint32) bool {
	return off == OffsetNone || off == OffsetNoneAlt
}

// ParseHierarchyEntry decodes one fixed 28-byte record from b at offset 0.
// selfOffset records the record's own position within the hierarchy entries
// region, since the caller computed it from the lookup offset rather than
// anything on disk.
func ParseHierarchyEntry(b []byte, selfOffset uint32) (HierarchyEntry, error) {
	raw, ok := buf.Slice(b, 0, HierarchyEntrySize)
	if !ok {
		return HierarchyEntry{}, fmt.Errorf("%w: hierarchy entry needs %d bytes, have %d", ErrTruncated, HierarchyEntrySize, len(b))
	}
	return HierarchyEntry{
		SelfOffset:        selfOffset,
		NameHash:          buf.U32LE(raw[4:8]),
		ParentOffset:      buf.U32LE(raw[12:16]),
		FirstChildOffset:  buf.U32LE(raw[16:20]),
		NextSiblingOffset: buf.U32LE(raw[20:24]),
		KeyNameEntryIndex: buf.U16LE(raw[24:26]),
		DataBlockNumber:   buf.U16LE(raw[26:28]),
	}, nil
}
