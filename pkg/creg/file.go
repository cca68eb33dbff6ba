// Package creg is a read-only library for the Windows 9x/Me Registry (CREG)
// binary hive format. It exposes a navigable tree of keys, each holding
// ordered child keys and named, typed values, backed by a file or an
// in-memory byte range.
package creg

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/joshuapare/creg/internal/blocksource"
	"github.com/joshuapare/creg/internal/codepage"
	"github.com/joshuapare/creg/internal/format"
	"github.com/joshuapare/creg/internal/keyitem"
	"github.com/joshuapare/creg/internal/navigation"
)

// File is a single opened hive. It owns one block source, the two
// navigation caches, and the current codepage; all methods are safe for
// concurrent use by multiple readers. A shared RWMutex is held across every
// call that reaches into the navigation caches (openKey, ChildByName), so
// Close can never run concurrently with one; each LRU cache also carries its
// own mutex, since two readers can be inside Area.EntryAt/BlockList.BlockAt
// at once under the same RLock.
type File struct {
	mu sync.RWMutex

	src    blocksource.Source
	header format.Header
	area   *navigation.Area
	blocks *navigation.BlockList

	codepage  codepage.ID
	corrupted bool
	aborted   atomic.Bool
	open      bool
}

// Open opens the hive at path, reads its header, and builds both navigation
// caches. It fails BadSignature if the file header isn't "CREG",
// UnsupportedVersion if the major version exceeds what this package
// understands, or Io on any read failure.
func Open(path string, opts OpenOptions) (*File, error) {
	src, err := blocksource.Open(path)
	if err != nil {
		return nil, &Error{Kind: ErrKindIO, Msg: "opening hive file", Err: err}
	}
	f, err := openFromSource(src, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return f, nil
}

// OpenBytes opens a hive already resident in memory, e.g. a buffer read from
// an archive or network stream. data is borrowed, not copied; it must not be
// mutated or freed while the File is open.
func OpenBytes(data []byte, opts OpenOptions) (*File, error) {
	src := blocksource.NewMemory(data, nil)
	return openFromSource(src, opts)
}

func openFromSource(src blocksource.Source, opts OpenOptions) (*File, error) {
	cp, err := opts.resolveCodepage()
	if err != nil {
		return nil, &Error{Kind: ErrKindUnsupportedCodepage, Msg: "resolving codepage", Err: err}
	}

	raw, err := src.Read(0, format.HeaderSize)
	if err != nil {
		return nil, &Error{Kind: ErrKindIO, Msg: "reading file header", Err: err}
	}
	header, err := format.ParseHeader(raw)
	if err != nil {
		return nil, &Error{Kind: ErrKindBadSignature, Msg: "not a CREG hive", Err: err}
	}
	if header.MajorVersion > 1 {
		return nil, &Error{Kind: ErrKindUnsupportedVersion, Msg: fmt.Sprintf("unsupported major version %d", header.MajorVersion)}
	}

	keyCacheSize := opts.CacheEntriesKeys
	if keyCacheSize == 0 {
		keyCacheSize = format.MaxCacheEntriesKeys
	}
	blockCacheSize := opts.CacheEntriesDataBlocks
	if blockCacheSize == 0 {
		blockCacheSize = format.MaxCacheEntriesDataBlocks
	}

	f := &File{src: src, header: header, codepage: cp, open: true}

	area, err := navigation.OpenArea(src, header.HierarchyAreaOffset, keyCacheSize)
	if err != nil {
		var shortRead *blocksource.ErrShortRead
		if errors.As(err, &shortRead) {
			return nil, &Error{Kind: ErrKindIO, Msg: "reading key-hierarchy area", Err: err}
		}
		return nil, &Error{Kind: ErrKindBadSignature, Msg: "reading key-hierarchy area", Err: err}
	}
	f.area = area

	blockListStart := header.HierarchyAreaOffset + format.RGKNHeaderSize + uint32(area.RegionSize())
	blocks, err := navigation.BuildBlockList(src, blockListStart, blockCacheSize, f.isAborted)
	if err != nil && !isAbortedErr(err) {
		return nil, &Error{Kind: ErrKindIO, Msg: "building data-block list", Err: err}
	}
	f.blocks = blocks
	f.corrupted = blocks.Corrupted()
	if isAbortedErr(err) {
		return f, ErrAborted
	}

	return f, nil
}

func isAbortedErr(err error) bool {
	return err != nil && err.Error() == navigation.ErrAborted.Error()
}

func (f *File) isAborted() bool { return f.aborted.Load() }

// Close releases the navigation caches and block source. Calling Close twice
// is safe. After Close, GetRootKey and the Key methods that open other keys
// (ChildByIndex, ChildByName, ChildByPath) fail NotOpen; accessors that read
// a handle's already-decoded data (names, counts, values and their data) do
// not check whether the File is still open.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return nil
	}
	f.open = false
	return f.src.Close()
}

// SignalAbort sets a one-shot, idempotent abort flag observed by
// long-running paths (the data-block list was already built at Open, so in
// practice this affects a future recursive path descent or sibling walk
// already in flight from another goroutine).
func (f *File) SignalAbort() {
	f.aborted.Store(true)
}

// IsCorrupted reports whether a bounded recovery happened anywhere in this
// hive since it was opened (an unexpected header mid-scan of the data-block
// list, for instance).
func (f *File) IsCorrupted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.corrupted
}

// GetFormatVersion returns the hive's major and minor version numbers.
func (f *File) GetFormatVersion() (major, minor uint16) {
	return f.header.MajorVersion, f.header.MinorVersion
}

// GetCodepage returns the codepage currently used to decode names and
// string values.
func (f *File) GetCodepage() codepage.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.codepage
}

// SetCodepage changes the codepage used for subsequently decoded names and
// values. Key names are decoded once when a Key is opened, so an existing
// Key keeps its name; value names and string data are decoded on each call,
// so existing Value handles pick up the new codepage. Returns
// UnsupportedCodepage and leaves the prior codepage in place if id isn't in
// the accepted set.
func (f *File) SetCodepage(id codepage.ID) error {
	if !codepage.Supported(id) {
		return &Error{Kind: ErrKindUnsupportedCodepage, Msg: fmt.Sprintf("codepage %d not supported", id)}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codepage = id
	return nil
}

// GetRootKey opens a key at the file's conventional root hierarchy-entry
// offset (0, relative to the hierarchy region).
func (f *File) GetRootKey() (*Key, error) {
	return f.openKey(0)
}

func (f *File) openKey(offset uint32) (*Key, error) {
	f.mu.RLock()
	open := f.open
	cp := f.codepage
	if !open {
		f.mu.RUnlock()
		return nil, ErrNotOpen
	}
	item, err := keyitem.Open(f.area, f.blocks, cp, offset, f.isAborted)
	f.mu.RUnlock()
	if err != nil {
		if isAbortedErr(err) {
			return nil, ErrAborted
		}
		return nil, wrapKeyItemErr(err)
	}
	if item.Corrupted {
		f.mu.Lock()
		f.corrupted = true
		f.mu.Unlock()
	}
	return &Key{file: f, item: item}, nil
}

func wrapKeyItemErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyitem.ErrCorruptedCycle):
		return &Error{Kind: ErrKindCorruptedCycle, Msg: "sibling chain cycle", Err: err}
	case errors.Is(err, keyitem.ErrLimitExceeded):
		return &Error{Kind: ErrKindLimitExceeded, Msg: "recursion depth exceeded", Err: err}
	case errors.Is(err, keyitem.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return &Error{Kind: ErrKindOutOfBounds, Msg: "resolving key item", Err: err}
	}
}
