// Package format decodes the on-disk structures of a Windows 9x/Me registry
// hive: the file header, the RGKN key-hierarchy area, RGDB data blocks, and
// the key-name/value entries packed inside them. Every decoder here takes a
// borrowed byte slice and returns either a populated struct or an error; none
// of them allocate more than the name/data copies the result needs, and none
// mutate the slice they were given.
package format

const (
	// SignatureCREG is the 4-byte magic at the start of a hive file.
	SignatureCREG = "CREG"
	// SignatureRGKN is the 4-byte magic at the start of the key-hierarchy area.
	SignatureRGKN = "RGKN"
	// SignatureRGDB is the 4-byte magic at the start of each data block.
	SignatureRGDB = "RGDB"

	// HeaderSize is the fixed size of the file header.
	HeaderSize = 32
	// RGKNHeaderSize is the fixed size of the key-hierarchy area's own header.
	RGKNHeaderSize = 32
	// HierarchyEntrySize is the fixed stride of a key-hierarchy record.
	HierarchyEntrySize = 28
	// DataBlockHeaderSize is the fixed size of an RGDB block's header.
	DataBlockHeaderSize = 32
	// KeyNameEntryHeaderSize is the fixed size of a key-name entry's header.
	KeyNameEntryHeaderSize = 20
	// ValueEntryHeaderSize is the fixed size of a value entry's header.
	ValueEntryHeaderSize = 12

	// OffsetNone and OffsetNoneAlt are the two sentinel encodings observed for
	// "no parent/child/sibling" in a key-hierarchy record.
	OffsetNone    uint32 = 0
	OffsetNoneAlt uint32 = 0xFFFFFFFF

	// KeyNameEntryIndexNone marks a key-name entry slot as free or as the
	// chain terminator when scanning a data block's entries.
	KeyNameEntryIndexNone uint16 = 0xFFFF

	// DataBlockNumberNone is the 16-bit encoding of "no associated key-name
	// entry", used by the synthetic root's hierarchy record. On disk the
	// field is unsigned, but the source treats the all-ones bit pattern as
	// the signed value -1; we accept exactly that bit pattern as "none" and
	// treat any other value at-or-beyond the data-block count as corruption
	// rather than guessing at further negative encodings.
	DataBlockNumberNone uint16 = 0xFFFF

	// MaxCacheEntriesKeys bounds the hierarchy-area LRU's decoded record count.
	MaxCacheEntriesKeys = 128
	// MaxCacheEntriesDataBlocks bounds the data-block-list LRU's entry count.
	MaxCacheEntriesDataBlocks = 16
	// MaxSubKeyRecursionDepth bounds sibling-walk and path-descent iteration.
	MaxSubKeyRecursionDepth = 512

	// MemoryMaximum is a sanity ceiling on a single data block's declared
	// size, guarding against a corrupt or hostile size field driving an
	// oversized allocation.
	MemoryMaximum = 1 << 30 // 1 GiB
)

// RegType identifies the on-disk type tag of a value entry.
type RegType uint32

// Known value types. Anything outside this set is passed through as raw
// bytes by callers rather than rejected.
const (
	RegNone       RegType = 0
	RegSZ         RegType = 1
	RegExpandSZ   RegType = 2
	RegBinary     RegType = 3
	RegDWORD      RegType = 4 // 32-bit, little-endian
	RegDWORDBE    RegType = 5 // 32-bit, big-endian
	RegLink       RegType = 6
	RegMultiSZ    RegType = 7
	RegQWORD      RegType = 11 // 64-bit, little-endian
)

// String renders a RegType the way original_source's value-type table does:
// a short mnemonic name, or "UNKNOWN" for anything uncatalogued.
func (t RegType) String() string {
	switch t {
	case RegNone:
		return "REG_NONE"
	case RegSZ:
		return "REG_SZ"
	case RegExpandSZ:
		return "REG_EXPAND_SZ"
	case RegBinary:
		return "REG_BINARY"
	case RegDWORD:
		return "REG_DWORD"
	case RegDWORDBE:
		return "REG_DWORD_BIG_ENDIAN"
	case RegLink:
		return "REG_LINK"
	case RegMultiSZ:
		return "REG_MULTI_SZ"
	case RegQWORD:
		return "REG_QWORD"
	default:
		return "UNKNOWN"
	}
}
