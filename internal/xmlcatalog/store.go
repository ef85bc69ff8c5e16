package xmlcatalog

import (
	"os"
	"time"
)

// CatalogStore wraps a parsed catalog file on disk and exposes whether
// it has aged past a configurable threshold. It never fetches a fresh
// copy itself — that remains the caller's responsibility — it only
// answers "is this stale" as a pure function of file mtime.
type CatalogStore struct {
	Path   string
	MaxAge time.Duration
}

// NewCatalogStore returns a store pointed at path, checked against
// maxAge.
func NewCatalogStore(path string, maxAge time.Duration) *CatalogStore {
	return &CatalogStore{Path: path, MaxAge: maxAge}
}

// Stale reports whether the catalog file is missing or older than
// MaxAge.
func (s *CatalogStore) Stale() (bool, error) {
	info, err := os.Stat(s.Path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > s.MaxAge, nil
}

// Load parses the catalog file at Path, regardless of staleness.
func (s *CatalogStore) Load() (*Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseXML(f)
}
