// Package blocksource provides random-access byte sources for CREG hive
// files: a memory-mapped (or read-in) file, or an in-memory byte range.
// Parsers in internal/format never mutate what Read returns; short reads
// at EOF are reported as errors rather than silently zero-filled.
package blocksource

import "fmt"

// Source is a random-access byte reader over a hive image.
type Source interface {
	// Read returns the len bytes at offset. The returned slice aliases the
	// backing storage and must not be modified or retained past Close.
	Read(offset, length int) ([]byte, error)
	// Size returns the total number of addressable bytes.
	Size() int
	// Close releases any resources (unmapping a file, for example).
	Close() error
}

// ErrShortRead is returned when a read would run past the end of the source.
type ErrShortRead struct {
	Offset, Length, Size int
}

func (e *ErrShortRead) Error() string {
	return fmt.Sprintf("blocksource: short read at offset %d length %d (size %d)", e.Offset, e.Length, e.Size)
}

// memSource is a Source backed by an in-memory byte slice, used both for the
// in-memory-range open mode and as the implementation underneath file opens
// once the bytes are mapped or loaded.
type memSource struct {
	buf     []byte
	release func() error
}

// NewMemory wraps an existing byte slice as a Source. release, if non-nil,
// is invoked on Close (used to unmap a file-backed mapping).
func NewMemory(buf []byte, release func() error) Source {
	return &memSource{buf: buf, release: release}
}

func (m *memSource) Read(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, &ErrShortRead{Offset: offset, Length: length, Size: len(m.buf)}
	}
	end := offset + length
	if end < offset || end > len(m.buf) {
		return nil, &ErrShortRead{Offset: offset, Length: length, Size: len(m.buf)}
	}
	return m.buf[offset:end], nil
}

func (m *memSource) Size() int { return len(m.buf) }

func (m *memSource) Close() error {
	if m.release == nil {
		return nil
	}
	release := m.release
	m.release = nil
	return release()
}

// Open maps the file at path (or reads it whole where mmap is unavailable)
// and returns a Source over its bytes.
func Open(path string) (Source, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(data, unmap), nil
}
