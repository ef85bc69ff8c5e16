// Package cm93 opens a CM93 chart database directory, indexes its cell
// files by scale and position, and serves viewport queries as GeoJSON
// feature collections or rasterized PNG tiles.
package cm93

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/saltwatch/cm93chart/internal/charterrors"
	"github.com/saltwatch/cm93chart/internal/dictionary"
)

// Scale is one of the eight CM93 chart scale letters, ordered from
// overview (Z) to harbor detail (G).
type Scale byte

const (
	ScaleZ Scale = 'Z'
	ScaleA Scale = 'A'
	ScaleB Scale = 'B'
	ScaleC Scale = 'C'
	ScaleD Scale = 'D'
	ScaleE Scale = 'E'
	ScaleF Scale = 'F'
	ScaleG Scale = 'G'
)

// AllScales lists every scale in overview-to-detail order.
var AllScales = []Scale{ScaleZ, ScaleA, ScaleB, ScaleC, ScaleD, ScaleE, ScaleF, ScaleG}

type cellKey struct {
	scale Scale
	index uint32
}

// Database indexes a CM93 root directory's cell files by (scale, cell
// index) -> file path, and loads its object/attribute dictionaries.
type Database struct {
	RootPath   string
	Dictionary *dictionary.Dictionary
	cellPaths  map[cellKey]string
}

// OpenDatabase validates the root directory and scans it for scale-letter
// subdirectories (A-G, Z) containing cell files, one level below any
// immediate child directory of root.
func OpenDatabase(root string, dictObjFile, dictAttrFile string) (*Database, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, &charterrors.InvalidDirectory{Path: root, Reason: "path does not exist"}
	}

	dictPath := filepath.Join(root, dictObjFile)
	attrPath := filepath.Join(root, dictAttrFile)
	if _, err := os.Stat(dictPath); err != nil {
		return nil, &charterrors.InvalidDirectory{Path: root, Reason: fmt.Sprintf("missing %s", dictObjFile)}
	}
	if _, err := os.Stat(attrPath); err != nil {
		return nil, &charterrors.InvalidDirectory{Path: root, Reason: fmt.Sprintf("missing %s", dictAttrFile)}
	}

	dict, err := dictionary.Load(root)
	if err != nil {
		return nil, err
	}

	db := &Database{RootPath: root, Dictionary: dict, cellPaths: make(map[cellKey]string)}
	db.scanCells(root)
	return db, nil
}

func (db *Database) scanCells(root string) {
	topEntries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, scale := range AllScales {
		scaleChar := string(byte(scale))
		for _, top := range topEntries {
			if !top.IsDir() {
				continue
			}
			scaleDir := filepath.Join(root, top.Name(), scaleChar)
			entries, err := os.ReadDir(scaleDir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				stem := trimExt(e.Name())
				index, ok := parseCellIndex(stem)
				if !ok {
					continue
				}
				db.cellPaths[cellKey{scale, index}] = filepath.Join(scaleDir, e.Name())
			}
		}
	}
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}

// parseCellIndex recovers a cell's numeric index from its filename stem,
// trying decimal first and hexadecimal second.
func parseCellIndex(stem string) (uint32, bool) {
	if n, err := strconv.ParseUint(stem, 10, 32); err == nil {
		return uint32(n), true
	}
	if n, err := strconv.ParseUint(stem, 16, 32); err == nil {
		return uint32(n), true
	}
	return 0, false
}

// CellPath returns the file path for a (scale, cellIndex) pair, if
// indexed.
func (db *Database) CellPath(scale Scale, cellIndex uint32) (string, bool) {
	p, ok := db.cellPaths[cellKey{scale, cellIndex}]
	return p, ok
}

// ListCells returns every indexed cell index at a scale, sorted.
func (db *Database) ListCells(scale Scale) []uint32 {
	var out []uint32
	for k := range db.cellPaths {
		if k.scale == scale {
			out = append(out, k.index)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AvailableScales returns every scale with at least one indexed cell.
func (db *Database) AvailableScales() []Scale {
	var out []Scale
	for _, s := range AllScales {
		if len(db.ListCells(s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}
