// Package mbtiles writes an MBTiles (SQLite) tile container: the
// standard schema of a metadata table and a tiles table keyed by
// TMS-flipped zoom/column/row.
package mbtiles

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"
)

// Writer accumulates tiles into an MBTiles SQLite file. It is safe for
// concurrent PutTile calls from an ingest worker pool.
type Writer struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates an MBTiles file at path, or opens the existing one, and
// creates any missing schema tables; existing tables and rows are kept.
func Open(path string) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("mbtiles: opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mbtiles: connecting to %s: %w", path, err)
	}

	w := &Writer{db: db}
	if err := w.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metadata (name TEXT UNIQUE, value TEXT)`,
		`CREATE TABLE IF NOT EXISTS tiles (
			zoom_level INTEGER,
			tile_column INTEGER,
			tile_row INTEGER,
			tile_data BLOB
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS tile_index ON tiles (zoom_level, tile_column, tile_row)`,
	}
	for _, s := range stmts {
		if _, err := w.db.Exec(s); err != nil {
			return fmt.Errorf("mbtiles: schema init: %w", err)
		}
	}
	return nil
}

// xyzToTMS flips an XYZ row index to the TMS convention MBTiles uses on
// disk: tms_y = 2^z - 1 - xyz_y.
func xyzToTMS(z, y int) int {
	return (1 << uint(z)) - 1 - y
}

// PutTile inserts or replaces one tile, addressed in XYZ coordinates.
func (w *Writer) PutTile(z, x, y int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tmsY := xyzToTMS(z, y)
	_, err := w.db.Exec(
		`INSERT OR REPLACE INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)`,
		z, x, tmsY, data,
	)
	if err != nil {
		return fmt.Errorf("mbtiles: storing tile z=%d x=%d y=%d: %w", z, x, y, err)
	}
	return nil
}

// GetTile retrieves a tile, returning (nil, nil) if it is absent.
func (w *Writer) GetTile(z, x, y int) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tmsY := xyzToTMS(z, y)
	var data []byte
	err := w.db.QueryRow(
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		z, x, tmsY,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mbtiles: querying tile z=%d x=%d y=%d: %w", z, x, y, err)
	}
	return data, nil
}

// Metadata is the standard MBTiles metadata row set.
type Metadata struct {
	Name        string
	Format      string // "png" for raster tiles produced here
	Type        string // "overlay" or "baselayer"
	Description string
	Bounds      [4]float64 // minLon, minLat, maxLon, maxLat
	MinZoom     int
	MaxZoom     int
}

// WriteMetadata upserts the metadata table from m.
func (w *Writer) WriteMetadata(m Metadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := map[string]string{
		"name":        m.Name,
		"format":      m.Format,
		"type":        m.Type,
		"description": m.Description,
		"bounds": fmt.Sprintf("%f,%f,%f,%f", m.Bounds[0], m.Bounds[1], m.Bounds[2], m.Bounds[3]),
		"minzoom": strconv.Itoa(m.MinZoom),
		"maxzoom": strconv.Itoa(m.MaxZoom),
	}
	for name, value := range rows {
		if _, err := w.db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, name, value); err != nil {
			return fmt.Errorf("mbtiles: writing metadata %s: %w", name, err)
		}
	}
	return nil
}

// Finalize runs VACUUM to compact the file, then closes it.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("mbtiles: vacuum: %w", err)
	}
	return w.db.Close()
}

// Close closes the underlying database without vacuuming.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.db.Close()
}
