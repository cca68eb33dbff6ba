package format

import (
	"fmt"

	"github.com/joshuapare/creg/internal/buf"
)

// DataBlockHeader is the decoded 32-byte header at the start of one RGDB
// data block.
type DataBlockHeader struct {
	// Offset is this block's file offset, recorded for diagnostics.
	Offset uint32

	Size       uint32
	UnusedSize uint32
	UsedSize   uint32
	Index      uint16
}

// ParseDataBlockHeader decodes the 32-byte RGDB header from b at offset 0.
// ErrNotDataBlock (rather than ErrSignatureMismatch) signals "end of the
// data-block list" — the caller stops scanning but does not treat it as a
// hard failure, matching original_source's loop-until-non-RGDB termination.
func ParseDataBlockHeader(b []byte, fileOffset uint32) (DataBlockHeader, error) {
	raw, ok := buf.Slice(b, 0, DataBlockHeaderSize)
	if !ok {
		return DataBlockHeader{}, fmt.Errorf("%w: RGDB header needs %d bytes, have %d", ErrTruncated, DataBlockHeaderSize, len(b))
	}
	if string(raw[0:4]) != SignatureRGDB {
		return DataBlockHeader{}, fmt.Errorf("%w: at offset %d", ErrNotDataBlock, fileOffset)
	}
	size := buf.U32LE(raw[4:8])
	if size <= DataBlockHeaderSize || size > MemoryMaximum {
		return DataBlockHeader{}, fmt.Errorf("%w: RGDB size %d at offset %d", ErrSanityLimit, size, fileOffset)
	}
	usedSize := buf.U32LE(raw[16:20])
	if usedSize > size-DataBlockHeaderSize {
		return DataBlockHeader{}, fmt.Errorf("%w: RGDB used_size %d exceeds payload %d", ErrSanityLimit, usedSize, size-DataBlockHeaderSize)
	}
	return DataBlockHeader{
		Offset:     fileOffset,
		Size:       size,
		UnusedSize: buf.U32LE(raw[8:12]),
		Index:      buf.U16LE(raw[14:16]),
		UsedSize:   usedSize,
	}, nil
}

// DataBlock is a fully decoded RGDB block: its header plus the key-name
// entries packed into its payload, indexed by each entry's own Index field
// (not by position — slots can be sparse or out of order).
type DataBlock struct {
	Header  DataBlockHeader
	Entries map[uint16]KeyNameEntry
}

// ParseDataBlockEntries walks the payload bytes following an RGDB header
// (payload is exactly hdr.Size-DataBlockHeaderSize bytes, as read by the
// caller) and decodes key-name entries until the payload is exhausted or an
// entry reports end-of-chain. A corrupt or truncated entry stops the scan
// without failing the whole block, mirroring the "recovered locally" policy
// for a broken data-block list.
func ParseDataBlockEntries(hdr DataBlockHeader, payload []byte) DataBlock {
	block := DataBlock{Header: hdr, Entries: make(map[uint16]KeyNameEntry)}

	limit := int(hdr.UsedSize)
	if limit > len(payload) {
		limit = len(payload)
	}

	pos := 0
	for pos < limit {
		entry, consumed, err := ParseKeyNameEntry(payload[pos:])
		if err != nil {
			break
		}
		if entry.Index != KeyNameEntryIndexNone {
			block.Entries[entry.Index] = entry
		}
		if consumed <= 0 {
			break
		}
		pos += consumed
	}
	return block
}

// Lookup returns the key-name entry with the given identifier, mirroring
// original_source's linear scan by entry index (stored here as a map lookup,
// which is the same contract — "find the entry whose Index equals the
// requested key-name-entry number" — at better than linear cost).
func (d DataBlock) Lookup(index uint16) (KeyNameEntry, bool) {
	e, ok := d.Entries[index]
	return e, ok
}
