// Package keyitem joins a key-hierarchy record to its key-name entry across
// the hierarchy area and the data-block list, and walks a key's sibling
// chain into an ordered list of child descriptors — cycle-detected and
// depth-bounded, since a hive is untrusted input.
package keyitem

import (
	"errors"
	"fmt"

	"github.com/joshuapare/creg/internal/codepage"
	"github.com/joshuapare/creg/internal/format"
	"github.com/joshuapare/creg/internal/navigation"
)

// ErrNotFound is returned when a required key-name entry cannot be located
// in the data block named by a hierarchy record. An out-of-range data-block
// number is not reported this way; it marks the item Corrupted instead.
var ErrNotFound = errors.New("keyitem: not found")

// ErrCorruptedCycle is returned when a sibling chain revisits a hierarchy
// range already walked in the same traversal.
var ErrCorruptedCycle = errors.New("keyitem: sibling chain cycle detected")

// ErrLimitExceeded is returned when a sibling walk exceeds
// format.MaxSubKeyRecursionDepth.
var ErrLimitExceeded = errors.New("keyitem: recursion depth exceeded")

// ErrAborted is returned when the caller's abort flag was observed mid-walk.
var ErrAborted = errors.New("keyitem: aborted")

// AbortFunc reports whether the caller's one-shot abort flag has been set.
type AbortFunc func() bool

// Item is the resolved view of one key: its hierarchy offset, decoded name
// and values (absent for the synthetic root), and the hierarchy offsets of
// its ordered children.
type Item struct {
	HierarchyOffset uint32
	Entry           format.HierarchyEntry

	// Name is empty for the synthetic root and for any hierarchy record
	// whose data_block_number is "none".
	Name string

	Values []format.ValueEntry

	// Children holds the hierarchy-record offset of each child, in sibling
	// order — the single source of truth a caller re-derives child items
	// from, rather than caching child Items themselves.
	Children []uint32

	// Corrupted is set when a bounded recovery happened while resolving this
	// item's own name/values: an out-of-range data-block number. A sibling
	// cycle among this item's children is never recovered this way — it
	// fails Open with ErrCorruptedCycle instead.
	Corrupted bool
}

// Open resolves the hierarchy record at offset into a fully-populated Item:
// its associated name/values (if any) and its ordered child descriptors.
func Open(area *navigation.Area, blocks *navigation.BlockList, cp codepage.ID, offset uint32, abort AbortFunc) (*Item, error) {
	entry, err := area.EntryAt(offset)
	if err != nil {
		return nil, err
	}

	item := &Item{HierarchyOffset: offset, Entry: entry}

	if entry.HasKeyNameEntry() {
		if err := resolveNameAndValues(item, blocks, cp); err != nil {
			return nil, err
		}
	}

	children, err := WalkSiblingsStrict(area, entry.FirstChildOffset, abort)
	if err != nil {
		return nil, err
	}
	item.Children = children

	return item, nil
}

// resolveNameAndValues fetches the data block named by entry.DataBlockNumber
// and looks up the key-name entry at entry.KeyNameEntryIndex, populating
// item.Name and item.Values. An out-of-range data-block number is treated as
// corruption (the item is left nameless/valueless but otherwise usable)
// rather than a hard failure, per the "data_block_number >= count is
// corruption" resolution in the design notes; a present-but-unresolvable
// key-name entry index is a hard error, matching "error if either lookup
// fails when required".
func resolveNameAndValues(item *Item, blocks *navigation.BlockList, cp codepage.ID) error {
	blockIndex := int(item.Entry.DataBlockNumber)
	if blockIndex < 0 || blockIndex >= blocks.Count() {
		item.Corrupted = true
		return nil
	}
	block, err := blocks.BlockAt(blockIndex)
	if err != nil {
		return err
	}
	keyName, ok := block.Lookup(item.Entry.KeyNameEntryIndex)
	if !ok {
		return fmt.Errorf("%w: key-name entry %d in data block %d", ErrNotFound, item.Entry.KeyNameEntryIndex, blockIndex)
	}
	name, err := codepage.Decode(keyName.Name, cp)
	if err != nil {
		return fmt.Errorf("keyitem: decoding key name: %w", err)
	}
	item.Name = name
	item.Values = keyName.Values
	return nil
}

// WalkSiblingsStrict follows the sibling chain starting at first and returns
// every offset visited. It fails CorruptedCycle (returning the offsets
// gathered before the cycle was detected) rather than looping forever, and
// LimitExceeded if the chain runs past format.MaxSubKeyRecursionDepth links.
// Cycles are a hard failure, never locally recovered: per spec.md §7, only a
// dangling data-block number and a broken data-block-list scan are
// recovered in place.
func WalkSiblingsStrict(area *navigation.Area, first uint32, abort AbortFunc) ([]uint32, error) {
	var offsets []uint32
	var seen rangeSet

	offset := first
	for depth := 0; !format.IsTerminalOffset(offset); depth++ {
		if abort != nil && abort() {
			return offsets, ErrAborted
		}
		if depth >= format.MaxSubKeyRecursionDepth {
			return offsets, fmt.Errorf("%w: sibling chain depth %d", ErrLimitExceeded, depth)
		}
		if seen.insert(offset, offset+format.HierarchyEntrySize) {
			return offsets, fmt.Errorf("%w: offset %d revisits an already-walked range", ErrCorruptedCycle, offset)
		}

		entry, err := area.EntryAt(offset)
		if err != nil {
			return offsets, err
		}
		offsets = append(offsets, offset)
		offset = entry.NextSiblingOffset
	}
	return offsets, nil
}

// matchResult carries the outcome of a hash-accelerated name comparison: the
// decoded name (so the caller can reuse it without re-decoding) and whether
// it matched the query.
type matchResult struct {
	name    string
	matches bool
}

// MatchName decodes rawName under cp and compares it against query using the
// same hash-hint-then-fold algorithm as value lookup: if queryHash is
// nonzero and the decoded name's hash differs, the comparison short-circuits
// without a full fold.
func MatchName(rawName []byte, cp codepage.ID, query string, queryHash uint32) (matchResult, error) {
	name, err := codepage.Decode(rawName, cp)
	if err != nil {
		return matchResult{}, err
	}
	if queryHash != 0 && codepage.Hash(name) != queryHash {
		return matchResult{name: name}, nil
	}
	return matchResult{name: name, matches: codepage.EqualFold(name, query)}, nil
}

// ChildByName scans item's children, opening each far enough to compare its
// name, and returns the first match. This is intentionally O(n): CREG hives
// have few direct siblings per key.
func ChildByName(area *navigation.Area, blocks *navigation.BlockList, cp codepage.ID, item *Item, query string, abort AbortFunc) (*Item, bool, error) {
	queryHash := codepage.Hash(query)
	for _, childOffset := range item.Children {
		child, err := Open(area, blocks, cp, childOffset, abort)
		if err != nil {
			return nil, false, err
		}
		if queryHash != 0 && codepage.Hash(child.Name) != queryHash {
			continue
		}
		if codepage.EqualFold(child.Name, query) {
			return child, true, nil
		}
	}
	return nil, false, nil
}

// ValueByName scans item's values in order and returns the first whose name
// matches query (hash-accelerated the same way ChildByName is). An empty
// query matches the key's default value.
func ValueByName(item *Item, cp codepage.ID, query string) (format.ValueEntry, bool, error) {
	queryHash := codepage.Hash(query)
	for _, v := range item.Values {
		result, err := MatchName(v.Name, cp, query, queryHash)
		if err != nil {
			return format.ValueEntry{}, false, err
		}
		if result.matches {
			return v, true, nil
		}
	}
	return format.ValueEntry{}, false, nil
}
