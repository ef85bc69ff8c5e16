package xmlcatalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCatalogStoreStaleWhenMissing(t *testing.T) {
	store := NewCatalogStore(filepath.Join(t.TempDir(), "missing.xml"), 24*time.Hour)
	stale, err := store.Stale()
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if !stale {
		t.Fatal("Stale() = false for a missing catalog file, want true")
	}
}

func TestCatalogStoreStaleWhenOld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xml")
	if err := os.WriteFile(path, []byte("<EncProductCatalog></EncProductCatalog>"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	store := NewCatalogStore(path, 24*time.Hour)
	stale, err := store.Stale()
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if !stale {
		t.Fatal("Stale() = false for a catalog older than MaxAge, want true")
	}
}

func TestCatalogStoreFreshWhenRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xml")
	if err := os.WriteFile(path, []byte("<EncProductCatalog></EncProductCatalog>"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewCatalogStore(path, 24*time.Hour)
	stale, err := store.Stale()
	if err != nil {
		t.Fatalf("Stale() error = %v", err)
	}
	if stale {
		t.Fatal("Stale() = true for a freshly written catalog, want false")
	}
}

func TestCatalogStoreLoadParsesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xml")
	if err := os.WriteFile(path, []byte("<EncProductCatalog></EncProductCatalog>"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewCatalogStore(path, 24*time.Hour)
	cat, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cat.CatalogType != "ENC" {
		t.Errorf("CatalogType = %q, want ENC", cat.CatalogType)
	}
}
