package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrEndOfChain indicates a key-name entry slot is free or terminates the
	// data block's entry chain. Callers treat this as "stop iterating", not
	// as a failure.
	ErrEndOfChain = errors.New("format: end of key-name entry chain")
	// ErrNotDataBlock indicates a data-block header's signature isn't RGDB,
	// meaning the data-block list has ended. Also not a failure by itself.
	ErrNotDataBlock = errors.New("format: not a data block")
	// ErrSanityLimit indicates a parsed size field exceeded a sanity bound.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")
)
