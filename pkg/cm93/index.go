package cm93

import (
	"github.com/dhconnelly/rtreego"

	"github.com/saltwatch/cm93chart/internal/cell"
)

// indexEntry is one cell's geographic envelope, carried in both the
// linear bounds map and the R-tree.
type indexEntry struct {
	scale     Scale
	cellIndex uint32
	bounds    [4]float64 // lonMin, latMin, lonMax, latMax
}

// Bounds implements rtreego.Spatial.
func (e indexEntry) Bounds() rtreego.Rect {
	lengths := []float64{e.bounds[2] - e.bounds[0], e.bounds[3] - e.bounds[1]}
	for i, l := range lengths {
		if l <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{e.bounds[0], e.bounds[1]}, lengths)
	return rect
}

// Index is the per-database spatial index: a scale-indexed bounds map
// (the correctness baseline, queried by a linear AABB scan) plus an
// R-tree built over the same entries for accelerated lookups.
type Index struct {
	bounds        map[cellKey][4]float64
	rtree         *rtreego.Rtree
	indexedScales map[Scale]bool
}

// NewIndex builds an empty index; scales are populated lazily via
// EnsureScaleIndexed.
func NewIndex() *Index {
	return &Index{
		bounds:        make(map[cellKey][4]float64),
		rtree:         rtreego.NewTree(2, 25, 50),
		indexedScales: make(map[Scale]bool),
	}
}

// EnsureScaleIndexed reads every not-yet-indexed cell's header at the
// given scale and inserts its bounds, then marks the scale fully
// indexed. Cells whose header cannot be parsed are skipped.
func (idx *Index) EnsureScaleIndexed(db *Database, scale Scale) {
	if idx.indexedScales[scale] {
		return
	}
	for _, cellIndex := range db.ListCells(scale) {
		key := cellKey{scale, cellIndex}
		if _, ok := idx.bounds[key]; ok {
			continue
		}
		path, ok := db.CellPath(scale, cellIndex)
		if !ok {
			continue
		}
		b, err := cell.ParseHeaderOnly(path)
		if err != nil {
			continue
		}
		idx.insert(scale, cellIndex, b)
	}
	idx.indexedScales[scale] = true
}

func (idx *Index) insert(scale Scale, cellIndex uint32, bounds [4]float64) {
	key := cellKey{scale, cellIndex}
	if _, ok := idx.bounds[key]; ok {
		return
	}
	idx.bounds[key] = bounds
	idx.rtree.Insert(indexEntry{scale: scale, cellIndex: cellIndex, bounds: bounds})
}

// ScanBounds performs a linear AABB intersection scan over every
// indexed cell at scale — the specification's correctness baseline,
// with no disk I/O once the scale has been indexed.
func (idx *Index) ScanBounds(scale Scale, minLat, minLon, maxLat, maxLon float64) []uint32 {
	var matching []uint32
	for key, b := range idx.bounds {
		if key.scale != scale {
			continue
		}
		cellMinLon, cellMinLat, cellMaxLon, cellMaxLat := b[0], b[1], b[2], b[3]
		if cellMaxLat < minLat || cellMinLat > maxLat || cellMaxLon < minLon || cellMinLon > maxLon {
			continue
		}
		matching = append(matching, key.index)
	}
	return matching
}

// Query returns the same result as ScanBounds but via the R-tree,
// trading the linear scan for an accelerated search — the path Reader
// uses in production.
func (idx *Index) Query(scale Scale, minLat, minLon, maxLat, maxLon float64) []uint32 {
	lengths := []float64{maxLon - minLon, maxLat - minLat}
	for i, l := range lengths {
		if l <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{minLon, minLat}, lengths)
	if err != nil {
		return idx.ScanBounds(scale, minLat, minLon, maxLat, maxLon)
	}

	var matching []uint32
	for _, sp := range idx.rtree.SearchIntersect(rect) {
		e := sp.(indexEntry)
		if e.scale != scale {
			continue
		}
		matching = append(matching, e.cellIndex)
	}
	return matching
}
