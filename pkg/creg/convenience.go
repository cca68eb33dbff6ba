package creg

import "sort"

// KeyInfo summarizes one key for listing purposes.
type KeyInfo struct {
	Name      string
	Path      string
	SubkeyN   int
	ValueN    int
	Corrupted bool
}

// ValueInfo summarizes one value for listing purposes.
type ValueInfo struct {
	Name string
	Type RegType
	Size int
}

// GetHiveInfo opens hivePath, reads its header fields, and closes it.
func GetHiveInfo(hivePath string, opts OpenOptions) (major, minor uint16, corrupted bool, err error) {
	f, err := Open(hivePath, opts)
	if err != nil {
		return 0, 0, false, err
	}
	defer f.Close()

	major, minor = f.GetFormatVersion()
	return major, minor, f.IsCorrupted(), nil
}

// ListKeys lists the direct (or, if recursive, all descendant) children of
// the key at keyPath ("" for the root), depth-bounded by maxDepth when
// recursive (0 means unbounded).
func ListKeys(hivePath, keyPath string, recursive bool, maxDepth int, opts OpenOptions) ([]KeyInfo, error) {
	f, err := Open(hivePath, opts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := f.GetRootKey()
	if err != nil {
		return nil, err
	}

	start := root
	if keyPath != "" {
		k, ok, err := root.ChildByPath(keyPath)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
		start = k
	}

	keys, err := listKeysRecursive(start, keyPath, recursive, maxDepth, 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Path < keys[j].Path })
	return keys, nil
}

func listKeysRecursive(k *Key, parentPath string, recursive bool, maxDepth, depth int) ([]KeyInfo, error) {
	var out []KeyInfo
	for i := 0; i < k.ChildCount(); i++ {
		child, err := k.ChildByIndex(i)
		if err != nil {
			return nil, err
		}
		path := child.Name()
		if parentPath != "" {
			path = parentPath + string(pathSeparator) + child.Name()
		}
		out = append(out, KeyInfo{
			Name:      child.Name(),
			Path:      path,
			SubkeyN:   child.ChildCount(),
			ValueN:    child.ValueCount(),
			Corrupted: child.IsCorrupted(),
		})
		if recursive && (maxDepth == 0 || depth+1 < maxDepth) {
			nested, err := listKeysRecursive(child, path, recursive, maxDepth, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}
	return out, nil
}

// ListValues lists the values attached to the key at keyPath ("" for the
// root).
func ListValues(hivePath, keyPath string, opts OpenOptions) ([]ValueInfo, error) {
	f, err := Open(hivePath, opts)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	root, err := f.GetRootKey()
	if err != nil {
		return nil, err
	}
	k := root
	if keyPath != "" {
		found, ok, err := root.ChildByPath(keyPath)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
		k = found
	}

	out := make([]ValueInfo, 0, k.ValueCount())
	for i := 0; i < k.ValueCount(); i++ {
		v, err := k.ValueByIndex(i)
		if err != nil {
			return nil, err
		}
		out = append(out, ValueInfo{Name: v.Name(), Type: v.Type(), Size: v.DataSize()})
	}
	return out, nil
}
