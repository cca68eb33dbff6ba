package creg

import "github.com/joshuapare/creg/internal/codepage"

// OpenOptions controls how a hive is opened.
type OpenOptions struct {
	// Codepage is a literal codepage name ("ascii", "windows-1252", ...), per
	// the accepted set in internal/codepage. Empty means Default
	// (windows-1252).
	Codepage string

	// CacheEntriesKeys and CacheEntriesDataBlocks override the twin LRU
	// caches' sizes; zero means the package defaults
	// (format.MaxCacheEntriesKeys / format.MaxCacheEntriesDataBlocks).
	CacheEntriesKeys      int
	CacheEntriesDataBlocks int
}

func (o OpenOptions) resolveCodepage() (codepage.ID, error) {
	if o.Codepage == "" {
		return codepage.Default, nil
	}
	return codepage.Parse(o.Codepage)
}
