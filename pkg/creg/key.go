package creg

import (
	"fmt"
	"strings"

	"github.com/joshuapare/creg/internal/format"
	"github.com/joshuapare/creg/internal/keyitem"
)

// pathSeparator is the ASCII code point splitting path segments in
// ChildByPath — "\" to match the native hive convention. ChildByPath splits
// on this separator only; there is no way to declare a different one.
// Callers embedding this library behind a "/"-separated filesystem adapter
// can call ChildByName themselves segment-by-segment instead.
const pathSeparator = '\\'

// Key is a handle to one resolved node in the hive's key tree: its name,
// values, and ordered children. A Key must not outlive the File it came
// from.
type Key struct {
	file *File
	item *keyitem.Item
}

// Name returns the key's decoded name, or "" for the synthetic root.
func (k *Key) Name() string { return k.item.Name }

// Offset returns the key's hierarchy-record offset, stable for the life of
// the File.
func (k *Key) Offset() uint32 { return k.item.HierarchyOffset }

// IsCorrupted reports whether resolving this key required a bounded
// recovery (an out-of-range data-block number, for instance).
func (k *Key) IsCorrupted() bool { return k.item.Corrupted }

// ValueCount returns the number of values attached to this key.
func (k *Key) ValueCount() int { return len(k.item.Values) }

// ValueByIndex returns the value at the given stable index ([0, ValueCount)).
func (k *Key) ValueByIndex(i int) (*Value, error) {
	if i < 0 || i >= len(k.item.Values) {
		return nil, &Error{Kind: ErrKindArgument, Msg: "value index out of range"}
	}
	return &Value{file: k.file, entry: k.item.Values[i]}, nil
}

// ValueByName looks up a value by its decoded name ("" for the key's
// default value). The bool result is false, not an error, when no value
// matches.
func (k *Key) ValueByName(name string) (*Value, bool, error) {
	entry, ok, err := keyitem.ValueByName(k.item, k.file.GetCodepage(), name)
	if err != nil {
		return nil, false, &Error{Kind: ErrKindConversion, Msg: "decoding value name", Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	return &Value{file: k.file, entry: entry}, true, nil
}

// ChildCount returns the number of direct children this key has.
func (k *Key) ChildCount() int { return len(k.item.Children) }

// ChildByIndex opens the child at the given position in sibling order.
func (k *Key) ChildByIndex(i int) (*Key, error) {
	if i < 0 || i >= len(k.item.Children) {
		return nil, &Error{Kind: ErrKindArgument, Msg: "child index out of range"}
	}
	return k.file.openKey(k.item.Children[i])
}

// ChildByName looks up a direct child by its decoded name, case-insensitive.
// The bool result is false, not an error, when no child matches.
func (k *Key) ChildByName(name string) (*Key, bool, error) {
	k.file.mu.RLock()
	open := k.file.open
	cp := k.file.codepage
	if !open {
		k.file.mu.RUnlock()
		return nil, false, ErrNotOpen
	}
	child, ok, err := keyitem.ChildByName(k.file.area, k.file.blocks, cp, k.item, name, k.file.isAborted)
	k.file.mu.RUnlock()
	if err != nil {
		if isAbortedErr(err) {
			return nil, false, ErrAborted
		}
		return nil, false, wrapKeyItemErr(err)
	}
	if !ok {
		return nil, false, nil
	}
	if child.Corrupted {
		k.file.mu.Lock()
		k.file.corrupted = true
		k.file.mu.Unlock()
	}
	return &Key{file: k.file, item: child}, true, nil
}

// ChildByPath resolves a "\"-separated path relative to this key, descending
// child-by-child with case-insensitive, codepage-aware name comparison. A
// single leading separator is stripped; an empty remaining path returns this
// key itself. An empty segment (consecutive separators) is "not found". A
// path of more than format.MaxSubKeyRecursionDepth segments fails
// LimitExceeded.
func (k *Key) ChildByPath(path string) (*Key, bool, error) {
	path = strings.TrimPrefix(path, string(pathSeparator))
	if path == "" {
		return k, true, nil
	}

	segments := strings.Split(path, string(pathSeparator))
	if len(segments) > format.MaxSubKeyRecursionDepth {
		return nil, false, &Error{Kind: ErrKindLimitExceeded, Msg: fmt.Sprintf("path depth %d exceeds %d", len(segments), format.MaxSubKeyRecursionDepth)}
	}

	current := k
	for _, segment := range segments {
		if segment == "" {
			return nil, false, nil
		}
		next, ok, err := current.ChildByName(segment)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		current = next
	}
	return current, true, nil
}
