package mbtiles

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestXYZToTMS(t *testing.T) {
	// At z=1 there are 2 rows (0,1); xyz y=0 is the northernmost tile,
	// which is tms row 1.
	if got := xyzToTMS(1, 0); got != 1 {
		t.Errorf("xyzToTMS(1,0) = %d, want 1", got)
	}
	if got := xyzToTMS(1, 1); got != 0 {
		t.Errorf("xyzToTMS(1,1) = %d, want 0", got)
	}
}

func TestPutAndGetTileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(filepath.Join(dir, "chart.mbtiles"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	data := []byte{0x89, 0x50, 0x4E, 0x47}
	if err := w.PutTile(5, 10, 12, data); err != nil {
		t.Fatalf("PutTile() error = %v", err)
	}

	got, err := w.GetTile(5, 10, 12)
	if err != nil {
		t.Fatalf("GetTile() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("GetTile() = %v, want %v", got, data)
	}
}

func TestGetMissingTileReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(filepath.Join(dir, "chart.mbtiles"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer w.Close()

	got, err := w.GetTile(3, 1, 1)
	if err != nil || got != nil {
		t.Fatalf("GetTile() on missing tile = %v, %v, want nil, nil", got, err)
	}
}

func TestWriteMetadataAndFinalize(t *testing.T) {
	dir := t.TempDir()
	w, err := Open(filepath.Join(dir, "chart.mbtiles"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	meta := Metadata{
		Name:    "baltic-approach",
		Format:  "png",
		Type:    "overlay",
		Bounds:  [4]float64{9.0, 54.0, 13.0, 57.0},
		MinZoom: 4,
		MaxZoom: 14,
	}
	if err := w.WriteMetadata(meta); err != nil {
		t.Fatalf("WriteMetadata() error = %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
}

func TestWriteMetadataIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.mbtiles")
	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	meta := Metadata{Name: "first", Format: "png", MinZoom: 4, MaxZoom: 14}
	if err := w.WriteMetadata(meta); err != nil {
		t.Fatalf("WriteMetadata() error = %v", err)
	}
	meta.Name = "second"
	if err := w.WriteMetadata(meta); err != nil {
		t.Fatalf("WriteMetadata() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM metadata WHERE name = 'name'`).Scan(&count); err != nil {
		t.Fatalf("querying metadata: %v", err)
	}
	if count != 1 {
		t.Fatalf("metadata rows with name='name' = %d, want 1 (repeated WriteMetadata calls should upsert, not append)", count)
	}

	var value string
	if err := db.QueryRow(`SELECT value FROM metadata WHERE name = 'name'`).Scan(&value); err != nil {
		t.Fatalf("querying metadata value: %v", err)
	}
	if value != "second" {
		t.Fatalf("metadata name value = %q, want %q (second call should replace the first)", value, "second")
	}
}
