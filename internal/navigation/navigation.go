package navigation

import (
	"errors"
	"fmt"

	"github.com/joshuapare/creg/internal/blocksource"
	"github.com/joshuapare/creg/internal/format"
)

// ErrAborted is returned when an abort flag observed mid-build stops a
// long-running scan (building the data-block list at open).
var ErrAborted = errors.New("navigation: aborted")

// AbortFunc reports whether the caller's one-shot abort flag has been set.
// Long loops consult it at block boundaries instead of a context, matching
// the coarse granularity a per-hive atomic.Bool affords.
type AbortFunc func() bool

// Area is the fixed-stride cache over the key-hierarchy region: random
// access to a HierarchyEntry by its byte offset relative to the region's
// first entry.
type Area struct {
	src          blocksource.Source
	regionStart  int // file offset of the first hierarchy entry
	regionSize   int // bytes available for entries (RGKN size minus its own header)
	cache        *lruCache[uint32, format.HierarchyEntry]
}

// OpenArea reads the RGKN sub-header at hierarchyAreaOffset and returns an
// Area ready to serve EntryAt lookups. cacheSize bounds the number of
// decoded records kept in memory at once.
func OpenArea(src blocksource.Source, hierarchyAreaOffset uint32, cacheSize int) (*Area, error) {
	raw, err := src.Read(int(hierarchyAreaOffset), format.RGKNHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("navigation: reading RGKN header: %w", err)
	}
	hdr, err := format.ParseRGKNHeader(raw)
	if err != nil {
		return nil, err
	}
	regionStart := int(hierarchyAreaOffset) + int(hdr.EntriesOffset)
	regionSize := int(hdr.Size) - int(hdr.EntriesOffset)
	if regionSize < 0 {
		regionSize = 0
	}
	return &Area{
		src:         src,
		regionStart: regionStart,
		regionSize:  regionSize,
		cache:       newLRUCache[uint32, format.HierarchyEntry](cacheSize),
	}, nil
}

// RegionSize returns the number of bytes available for hierarchy entries,
// i.e. the RGKN sub-header's declared size minus its own entries offset.
func (a *Area) RegionSize() int { return a.regionSize }

// EntryAt decodes (or returns from cache) the hierarchy record at offset,
// relative to the start of the entries region.
func (a *Area) EntryAt(offset uint32) (format.HierarchyEntry, error) {
	if e, ok := a.cache.get(offset); ok {
		return e, nil
	}
	fileOffset := a.regionStart + int(offset)
	raw, err := a.src.Read(fileOffset, format.HierarchyEntrySize)
	if err != nil {
		return format.HierarchyEntry{}, fmt.Errorf("navigation: reading hierarchy entry at %d: %w", offset, err)
	}
	entry, err := format.ParseHierarchyEntry(raw, offset)
	if err != nil {
		return format.HierarchyEntry{}, err
	}
	a.cache.put(offset, entry)
	return entry, nil
}

// blockRange is the file span of one RGDB block, as discovered while
// building the data-block list.
type blockRange struct {
	offset uint32
	size   uint32
}

// BlockList is the variable-stride cache over the sequence of RGDB data
// blocks: random access to a fully-decoded DataBlock by its position in the
// list (not its on-disk Index field, which the caller dereferences via
// DataBlock.Lookup).
type BlockList struct {
	src       blocksource.Source
	ranges    []blockRange
	corrupted bool
	cache     *lruCache[int, format.DataBlock]
}

// BuildBlockList scans data blocks starting at startOffset, appending
// [offset, size) ranges until a header fails the RGDB check or EOF is
// reached. The scan is not required to match the file header's advertised
// count, and an unexpected signature mid-scan stops the list gracefully
// (marking Corrupted) rather than failing the whole open.
func BuildBlockList(src blocksource.Source, startOffset uint32, cacheSize int, abort AbortFunc) (*BlockList, error) {
	bl := &BlockList{src: src, cache: newLRUCache[int, format.DataBlock](cacheSize)}

	offset := int(startOffset)
	for offset < src.Size() {
		if abort != nil && abort() {
			return bl, ErrAborted
		}
		raw, err := src.Read(offset, format.DataBlockHeaderSize)
		if err != nil {
			// Short read at the tail: treat as end of list, not corruption —
			// a well-formed hive's last block ends exactly at EOF.
			break
		}
		hdr, err := format.ParseDataBlockHeader(raw, uint32(offset))
		if err != nil {
			if errors.Is(err, format.ErrNotDataBlock) {
				break
			}
			// A malformed (but signature-bearing) header: stop scanning and
			// expose everything parsed so far, per the recovered-corruption
			// policy for the data-block list.
			bl.corrupted = true
			break
		}
		bl.ranges = append(bl.ranges, blockRange{offset: hdr.Offset, size: hdr.Size})
		offset += int(hdr.Size)
	}
	return bl, nil
}

// Count returns the number of data blocks discovered while building the list.
func (bl *BlockList) Count() int { return len(bl.ranges) }

// Corrupted reports whether the scan stopped early due to an unexpected
// header, rather than running cleanly out of RGDB signatures or file bytes.
func (bl *BlockList) Corrupted() bool { return bl.corrupted }

// BlockAt decodes (or returns from cache) the data block at the given list
// position. index must be within [0, Count()).
func (bl *BlockList) BlockAt(index int) (format.DataBlock, error) {
	if index < 0 || index >= len(bl.ranges) {
		return format.DataBlock{}, fmt.Errorf("navigation: data block index %d out of range [0,%d)", index, len(bl.ranges))
	}
	if block, ok := bl.cache.get(index); ok {
		return block, nil
	}
	r := bl.ranges[index]
	raw, err := bl.src.Read(int(r.offset), int(r.size))
	if err != nil {
		return format.DataBlock{}, fmt.Errorf("navigation: reading data block %d: %w", index, err)
	}
	hdr, err := format.ParseDataBlockHeader(raw, r.offset)
	if err != nil {
		return format.DataBlock{}, err
	}
	block := format.ParseDataBlockEntries(hdr, raw[format.DataBlockHeaderSize:])
	bl.cache.put(index, block)
	return block, nil
}
