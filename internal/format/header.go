package format

import (
	"fmt"

	"github.com/joshuapare/creg/internal/buf"
)

// Header is the decoded 32-byte file header at offset 0 of a hive.
type Header struct {
	MajorVersion             uint16
	MinorVersion             uint16
	HierarchyAreaOffset      uint32
	AdvertisedDataBlockCount uint16
}

// ParseHeader decodes the file header from b, which must hold at least
// HeaderSize bytes starting at offset 0. There is no checksum to verify;
// libcreg's header carries none.
func ParseHeader(b []byte) (Header, error) {
	if !buf.Has(b, 0, HeaderSize) {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(b))
	}

	sig, err := buf.CheckedString(b, 0, 4)
	if err != nil {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(b))
	}
	if sig != SignatureCREG {
		return Header{}, fmt.Errorf("%w: want %q, got %q", ErrSignatureMismatch, SignatureCREG, sig)
	}

	minor, err := buf.CheckedU16(b, 4)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	major, err := buf.CheckedU16(b, 6)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	hierarchyOffset, err := buf.CheckedU32(b, 8)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	blockCount, err := buf.CheckedU16(b, 16)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	return Header{
		MinorVersion:             minor,
		MajorVersion:             major,
		HierarchyAreaOffset:      hierarchyOffset,
		AdvertisedDataBlockCount: blockCount,
	}, nil
}
