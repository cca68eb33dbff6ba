package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func le16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func le32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

func buildHeader(major, minor uint16, hierarchyOffset uint32, blockCount uint16) []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], SignatureCREG)
	copy(b[4:6], le16(minor))
	copy(b[6:8], le16(major))
	copy(b[8:12], le32(hierarchyOffset))
	copy(b[16:18], le16(blockCount))
	return b
}

func TestParseHeader(t *testing.T) {
	b := buildHeader(1, 0, 0x20, 1)
	h, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint16(1), h.MajorVersion)
	require.Equal(t, uint32(0x20), h.HierarchyAreaOffset)
	require.Equal(t, uint16(1), h.AdvertisedDataBlockCount)
}

func TestParseHeaderBadSignature(t *testing.T) {
	b := buildHeader(1, 0, 0x20, 1)
	copy(b[0:4], "XXXX")
	_, err := ParseHeader(b)
	require.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestParseHeaderTruncated(t *testing.T) {
	_, err := ParseHeader(make([]byte, 10))
	require.ErrorIs(t, err, ErrTruncated)
}

func buildHierarchyEntry(nameHash, parent, firstChild, nextSibling uint32, nameEntryIdx, dataBlockNum uint16) []byte {
	b := make([]byte, HierarchyEntrySize)
	copy(b[4:8], le32(nameHash))
	copy(b[12:16], le32(parent))
	copy(b[16:20], le32(firstChild))
	copy(b[20:24], le32(nextSibling))
	copy(b[24:26], le16(nameEntryIdx))
	copy(b[26:28], le16(dataBlockNum))
	return b
}

func TestParseHierarchyEntryRoot(t *testing.T) {
	b := buildHierarchyEntry(0, OffsetNoneAlt, OffsetNoneAlt, OffsetNoneAlt, 0, DataBlockNumberNone)
	e, err := ParseHierarchyEntry(b, 0)
	require.NoError(t, err)
	require.False(t, e.HasKeyNameEntry())
	require.True(t, IsTerminalOffset(e.FirstChildOffset))
}

func TestParseHierarchyEntryTruncated(t *testing.T) {
	_, err := ParseHierarchyEntry(make([]byte, 10), 0)
	require.ErrorIs(t, err, ErrTruncated)
}

func buildValueEntry(typ RegType, name string, data []byte) []byte {
	b := make([]byte, ValueEntryHeaderSize)
	copy(b[0:4], le32(uint32(typ)))
	copy(b[8:10], le16(uint16(len(name))))
	copy(b[10:12], le16(uint16(len(data))))
	b = append(b, []byte(name)...)
	b = append(b, data...)
	return b
}

func TestParseValueEntry(t *testing.T) {
	raw := buildValueEntry(RegSZ, "ProductName", append([]byte("Windows"), 0))
	v, n, err := ParseValueEntry(raw, 0)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.Equal(t, "ProductName", string(v.Name))
	require.Equal(t, RegSZ, v.Type)
	require.False(t, v.IsDefault())
}

func TestParseValueEntryDefault(t *testing.T) {
	raw := buildValueEntry(RegSZ, "", []byte("default"))
	v, _, err := ParseValueEntry(raw, 0)
	require.NoError(t, err)
	require.True(t, v.IsDefault())
}

func TestValueEntryAsU32Corrupted(t *testing.T) {
	raw := buildValueEntry(RegDWORD, "", []byte{0x01, 0x02, 0x03})
	v, _, err := ParseValueEntry(raw, 0)
	require.NoError(t, err)
	n, corrupted := v.AsU32()
	require.True(t, corrupted)
	require.Equal(t, uint32(0x00030201), n)
}

func TestValueEntryAsU32LE(t *testing.T) {
	raw := buildValueEntry(RegDWORD, "", le32(0xDEADBEEF))
	v, _, err := ParseValueEntry(raw, 0)
	require.NoError(t, err)
	n, corrupted := v.AsU32()
	require.False(t, corrupted)
	require.Equal(t, uint32(0xDEADBEEF), n)
}

func buildKeyNameEntry(index uint16, name string, values [][]byte) []byte {
	var valuesBlob []byte
	for _, v := range values {
		valuesBlob = append(valuesBlob, v...)
	}
	size := KeyNameEntryHeaderSize + len(name) + len(valuesBlob)
	b := make([]byte, KeyNameEntryHeaderSize)
	copy(b[0:4], le32(uint32(size)))
	copy(b[4:6], le16(index))
	copy(b[8:12], le32(uint32(size)))
	copy(b[12:14], le16(uint16(len(name))))
	copy(b[14:16], le16(uint16(len(values))))
	b = append(b, []byte(name)...)
	b = append(b, valuesBlob...)
	return b
}

func TestParseKeyNameEntry(t *testing.T) {
	value := buildValueEntry(RegSZ, "ProductName", append([]byte("Windows"), 0))
	raw := buildKeyNameEntry(0, "Software", [][]byte{value})
	k, n, err := ParseKeyNameEntry(raw)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.Equal(t, "Software", string(k.Name))
	require.Len(t, k.Values, 1)
	require.Equal(t, "ProductName", string(k.Values[0].Name))
}

func TestParseKeyNameEntryEndOfChain(t *testing.T) {
	b := make([]byte, KeyNameEntryHeaderSize)
	copy(b[4:6], le16(KeyNameEntryIndexNone))
	_, _, err := ParseKeyNameEntry(b)
	require.ErrorIs(t, err, ErrEndOfChain)
}

func buildDataBlock(index uint16, entries [][]byte) []byte {
	var payload []byte
	for _, e := range entries {
		payload = append(payload, e...)
	}
	size := DataBlockHeaderSize + len(payload)
	b := make([]byte, DataBlockHeaderSize)
	copy(b[0:4], SignatureRGDB)
	copy(b[4:8], le32(uint32(size)))
	copy(b[16:20], le32(uint32(len(payload))))
	copy(b[14:16], le16(index))
	b = append(b, payload...)
	return b
}

func TestParseDataBlockHeaderAndEntries(t *testing.T) {
	value := buildValueEntry(RegSZ, "ProductName", append([]byte("Windows"), 0))
	kne := buildKeyNameEntry(1, "Software", [][]byte{value})
	raw := buildDataBlock(0, [][]byte{kne})

	hdr, err := ParseDataBlockHeader(raw, 0x100)
	require.NoError(t, err)
	require.Equal(t, uint32(0x100), hdr.Offset)

	block := ParseDataBlockEntries(hdr, raw[DataBlockHeaderSize:])
	entry, ok := block.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "Software", string(entry.Name))
}

func TestParseDataBlockHeaderNotRGDB(t *testing.T) {
	b := make([]byte, DataBlockHeaderSize)
	copy(b[0:4], "XXXX")
	_, err := ParseDataBlockHeader(b, 0)
	require.ErrorIs(t, err, ErrNotDataBlock)
}

func TestParseRGKNHeader(t *testing.T) {
	b := make([]byte, RGKNHeaderSize)
	copy(b[0:4], SignatureRGKN)
	copy(b[4:8], le32(RGKNHeaderSize+HierarchyEntrySize))
	copy(b[8:12], le32(RGKNHeaderSize))
	hdr, err := ParseRGKNHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint32(RGKNHeaderSize+HierarchyEntrySize), hdr.Size)
	require.Equal(t, uint32(RGKNHeaderSize), hdr.EntriesOffset)
}

func TestRegTypeString(t *testing.T) {
	require.Equal(t, "REG_SZ", RegSZ.String())
	require.Equal(t, "UNKNOWN", RegType(99).String())
}
