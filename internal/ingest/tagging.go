package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/saltwatch/cm93chart/internal/boundsharvest"
	"github.com/saltwatch/cm93chart/internal/bsbcatalog"

	_ "modernc.org/sqlite"
)

// TagResult is the outcome of TagFromBSB, matching the consumer
// contract's tag_from_bsb return shape.
type TagResult struct {
	Updated  int      `json:"updated"`
	NotFound int      `json:"not_found"`
	Errors   []string `json:"errors"`
}

// TagFromBSB scans folder for a BSB catalog file (extension .bsb) and,
// for every MBTiles file in folder whose stem matches a catalog entry,
// overwrites its name/description metadata. Files with no matching
// catalog entry are counted as NotFound, never treated as failures.
func TagFromBSB(folder string) (TagResult, error) {
	catalog, err := loadBSBCatalog(folder)
	if err != nil {
		return TagResult{}, err
	}

	mbtilesPaths, err := listMBTiles(folder)
	if err != nil {
		return TagResult{}, err
	}

	var result TagResult
	for _, path := range mbtilesPaths {
		stem := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		entry, ok := catalog.ByChartID(stem)
		if !ok {
			result.NotFound++
			continue
		}
		if err := writeNameMetadata(path, entry, catalog.EditionDate); err != nil {
			log.Printf("ingest: tag-from-bsb failed for %s: %v", path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		result.Updated++
	}
	return result, nil
}

// FixBoundsResult is the outcome of FixBounds, matching the consumer
// contract's fix_bounds return shape.
type FixBoundsResult struct {
	Updated  int `json:"updated"`
	NotFound int `json:"not_found"`
	Failed   int `json:"failed"`
}

// FixBounds re-derives each MBTiles file's bounds metadata by shelling
// out to the converter's info tool against the original source file
// (located by stem next to the MBTiles, or under folder). MBTiles with
// no recoverable source are counted NotFound; info/parse failures are
// counted Failed. Neither aborts the run.
func FixBounds(ctx context.Context, converter *Converter, folder string) (FixBoundsResult, error) {
	mbtilesPaths, err := listMBTiles(folder)
	if err != nil {
		return FixBoundsResult{}, err
	}

	var result FixBoundsResult
	for _, path := range mbtilesPaths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		srcPath, ok := findSourceByStem(folder, stem)
		if !ok {
			result.NotFound++
			continue
		}

		infoJSON, err := converter.Info(ctx, srcPath)
		if err != nil {
			log.Printf("ingest: fix-bounds info failed for %s: %v", srcPath, err)
			result.Failed++
			continue
		}
		bounds, err := boundsharvest.FromGdalInfoJSON(infoJSON)
		if err != nil {
			log.Printf("ingest: fix-bounds bounds parse failed for %s: %v", srcPath, err)
			result.Failed++
			continue
		}
		if err := writeBoundsMetadata(path, bounds); err != nil {
			log.Printf("ingest: fix-bounds metadata write failed for %s: %v", path, err)
			result.Failed++
			continue
		}
		result.Updated++
	}
	return result, nil
}

func loadBSBCatalog(folder string) (*bsbcatalog.Catalog, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading %s: %w", folder, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".bsb") {
			continue
		}
		f, err := os.Open(filepath.Join(folder, e.Name()))
		if err != nil {
			return nil, err
		}
		cat, err := bsbcatalog.Parse(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		return cat, nil
	}
	return nil, fmt.Errorf("ingest: no .bsb catalog file found under %s", folder)
}

func listMBTiles(folder string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(folder, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".mbtiles") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// findSourceByStem looks for a raster source file under folder whose
// stem (case-insensitive) matches stem.
func findSourceByStem(folder, stem string) (string, bool) {
	var found string
	_ = filepath.WalkDir(folder, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || found != "" {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !sourceExtensions[ext] {
			return nil
		}
		candidate := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.EqualFold(candidate, stem) {
			found = path
		}
		return nil
	})
	return found, found != ""
}

func writeNameMetadata(mbtilesPath string, entry bsbcatalog.Entry, editionDate string) error {
	db, err := sql.Open("sqlite", mbtilesPath)
	if err != nil {
		return err
	}
	defer db.Close()

	name := entry.Title
	if strings.EqualFold(entry.Type, "Inset") {
		name += " (Inset)"
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, "name", name); err != nil {
		return err
	}
	if editionDate != "" {
		if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, "description", "Edition: "+editionDate); err != nil {
			return err
		}
	}
	return nil
}

func writeBoundsMetadata(mbtilesPath string, bounds boundsharvest.Bounds) error {
	db, err := sql.Open("sqlite", mbtilesPath)
	if err != nil {
		return err
	}
	defer db.Close()

	boundsStr := fmt.Sprintf("%f,%f,%f,%f", bounds[0], bounds[1], bounds[2], bounds[3])
	_, err = db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, "bounds", boundsStr)
	return err
}
