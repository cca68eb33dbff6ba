package navigation

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/creg/internal/blocksource"
	"github.com/joshuapare/creg/internal/format"
)

func le16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func le32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

// countingSource wraps a blocksource.Source and counts Read calls, so tests
// can tell a cache hit (no new Read) from a miss (a new Read) without
// reaching into the cache's internals.
type countingSource struct {
	blocksource.Source
	reads int
}

func (c *countingSource) Read(offset, length int) ([]byte, error) {
	c.reads++
	return c.Source.Read(offset, length)
}

func hierarchyEntry(nextSibling uint32) []byte {
	b := make([]byte, format.HierarchyEntrySize)
	copy(b[20:24], le32(nextSibling))
	copy(b[26:28], le16(format.DataBlockNumberNone))
	return b
}

func buildRGKNArea(entries ...[]byte) []byte {
	var payload []byte
	for _, e := range entries {
		payload = append(payload, e...)
	}
	header := make([]byte, format.RGKNHeaderSize)
	copy(header[0:4], format.SignatureRGKN)
	copy(header[4:8], le32(uint32(format.RGKNHeaderSize+len(payload))))
	copy(header[8:12], le32(format.RGKNHeaderSize))
	return append(header, payload...)
}

func TestOpenAreaParsesHeader(t *testing.T) {
	raw := buildRGKNArea(hierarchyEntry(format.OffsetNoneAlt))
	src := blocksource.NewMemory(raw, nil)

	area, err := OpenArea(src, 0, 8)
	require.NoError(t, err)
	require.Equal(t, format.HierarchyEntrySize, area.RegionSize())
}

func TestOpenAreaBadSignature(t *testing.T) {
	raw := make([]byte, format.RGKNHeaderSize)
	copy(raw[0:4], "XXXX")
	src := blocksource.NewMemory(raw, nil)

	_, err := OpenArea(src, 0, 8)
	require.Error(t, err)
}

func TestAreaEntryAtCachesAcrossCalls(t *testing.T) {
	raw := buildRGKNArea(
		hierarchyEntry(format.HierarchyEntrySize),
		hierarchyEntry(2*format.HierarchyEntrySize),
		hierarchyEntry(format.OffsetNoneAlt),
	)
	counting := &countingSource{Source: blocksource.NewMemory(raw, nil)}

	area, err := OpenArea(counting, 0, 2)
	require.NoError(t, err)

	_, err = area.EntryAt(0)
	require.NoError(t, err)
	readsAfterFirst := counting.reads

	_, err = area.EntryAt(0)
	require.NoError(t, err)
	require.Equal(t, readsAfterFirst, counting.reads, "second lookup of the same offset must hit the cache")
}

func TestAreaEntryAtEvictsLeastRecentlyUsed(t *testing.T) {
	raw := buildRGKNArea(
		hierarchyEntry(format.HierarchyEntrySize),
		hierarchyEntry(2*format.HierarchyEntrySize),
		hierarchyEntry(format.OffsetNoneAlt),
	)
	counting := &countingSource{Source: blocksource.NewMemory(raw, nil)}

	// Capacity 2: after visiting 0, 28, 56 in order, offset 0 (the least
	// recently used) should have been evicted.
	area, err := OpenArea(counting, 0, 2)
	require.NoError(t, err)

	_, err = area.EntryAt(0)
	require.NoError(t, err)
	_, err = area.EntryAt(28)
	require.NoError(t, err)
	_, err = area.EntryAt(56)
	require.NoError(t, err)

	readsBefore := counting.reads
	_, err = area.EntryAt(28)
	require.NoError(t, err)
	require.Equal(t, readsBefore, counting.reads, "28 was touched more recently than 0 and should still be cached")

	readsBeforeReload := counting.reads
	_, err = area.EntryAt(0)
	require.NoError(t, err)
	require.Greater(t, counting.reads, readsBeforeReload, "0 should have been evicted and required a re-read")
}

// buildRGDBBlock returns a minimal valid RGDB block with a 4-byte padding
// payload (too small to hold a real key-name entry, which is fine: these
// tests exercise the block-list scan and cache, not entry parsing).
func buildRGDBBlock(index uint16, payloadSize int) []byte {
	if payloadSize < 4 {
		payloadSize = 4
	}
	b := make([]byte, format.DataBlockHeaderSize+payloadSize)
	copy(b[0:4], format.SignatureRGDB)
	copy(b[4:8], le32(uint32(len(b))))
	copy(b[14:16], le16(index))
	copy(b[16:20], le32(uint32(payloadSize)))
	return b
}

func TestBuildBlockListStopsAtNonRGDB(t *testing.T) {
	block := buildRGDBBlock(0, 4)
	tail := make([]byte, format.DataBlockHeaderSize)
	copy(tail[0:4], "XXXX")
	src := blocksource.NewMemory(append(block, tail...), nil)

	bl, err := BuildBlockList(src, 0, 4, nil)
	require.NoError(t, err)
	require.Equal(t, 1, bl.Count())
	require.False(t, bl.Corrupted())
}

func TestBuildBlockListHonorsAbort(t *testing.T) {
	block1 := buildRGDBBlock(0, 4)
	block2 := buildRGDBBlock(1, 4)
	src := blocksource.NewMemory(append(block1, block2...), nil)

	calls := 0
	abort := func() bool {
		calls++
		return calls > 1
	}

	bl, err := BuildBlockList(src, 0, 4, abort)
	require.ErrorIs(t, err, ErrAborted)
	require.Equal(t, 1, bl.Count())
}

func TestBlockListBlockAtCachesAndEvicts(t *testing.T) {
	block0 := buildRGDBBlock(0, 4)
	block1 := buildRGDBBlock(1, 4)
	counting := &countingSource{Source: blocksource.NewMemory(append(block0, block1...), nil)}

	bl, err := BuildBlockList(counting, 0, 1, nil) // cache size 1: forces eviction
	require.NoError(t, err)
	require.Equal(t, 2, bl.Count())

	readsAfterScan := counting.reads

	_, err = bl.BlockAt(0)
	require.NoError(t, err)
	readsAfterFirst := counting.reads
	require.Greater(t, readsAfterFirst, readsAfterScan)

	_, err = bl.BlockAt(1)
	require.NoError(t, err)
	readsAfterSecond := counting.reads
	require.Greater(t, readsAfterSecond, readsAfterFirst)

	// Block 0 was evicted by block 1 (cache size 1); fetching it again must
	// trigger a new read.
	_, err = bl.BlockAt(0)
	require.NoError(t, err)
	require.Greater(t, counting.reads, readsAfterSecond)
}

func TestBlockListBlockAtOutOfRange(t *testing.T) {
	bl := &BlockList{cache: newLRUCache[int, format.DataBlock](4)}
	_, err := bl.BlockAt(0)
	require.Error(t, err)
}
