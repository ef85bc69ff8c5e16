package cm93

import (
	"sync"

	"github.com/saltwatch/cm93chart/internal/cell"
	"github.com/saltwatch/cm93chart/internal/charterrors"
)

const defaultCacheCapacity = 500

// FeatureRef is a lightweight pointer to one feature, letting callers
// look features up again without holding a reference across cache
// eviction.
type FeatureRef struct {
	Scale        Scale
	CellIndex    uint32
	FeatureIndex int
}

// Reader is the single-writer/multi-reader entry point over a CM93
// database: a bounded cell cache plus a lazily built spatial index.
// Every query acquires the write lock because it may populate the
// cache or index.
type Reader struct {
	mu       sync.RWMutex
	db       *Database
	index    *Index
	cache    map[cellKey]*cell.Cell
	order    []cellKey // insertion order, for arbitrary (oldest-first) eviction
	capacity int
}

// Open builds a Reader over an already-opened Database.
func Open(db *Database, cacheCapacity int) *Reader {
	if cacheCapacity <= 0 {
		cacheCapacity = defaultCacheCapacity
	}
	return &Reader{
		db:       db,
		index:    NewIndex(),
		cache:    make(map[cellKey]*cell.Cell),
		capacity: cacheCapacity,
	}
}

// AvailableScales returns every scale with at least one cell.
func (r *Reader) AvailableScales() []Scale {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db.AvailableScales()
}

// GetCell loads a cell from cache, or from disk on a miss, evicting the
// oldest entry if the cache is at capacity.
func (r *Reader) GetCell(scale Scale, cellIndex uint32) (*cell.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getCellLocked(scale, cellIndex)
}

func (r *Reader) getCellLocked(scale Scale, cellIndex uint32) (*cell.Cell, error) {
	key := cellKey{scale, cellIndex}
	if c, ok := r.cache[key]; ok {
		return c, nil
	}

	path, ok := r.db.CellPath(scale, cellIndex)
	if !ok {
		return nil, &charterrors.CellNotFound{Scale: string(byte(scale)), CellIndex: cellIndex}
	}

	c, err := cell.Parse(path)
	if err != nil {
		return nil, err
	}

	if len(r.cache) >= r.capacity && len(r.order) > 0 {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.cache[key] = c
	r.order = append(r.order, key)

	r.index.insert(scale, cellIndex, c.Bounds())

	return c, nil
}

// FindCellsInBounds ensures the scale's spatial index is built, then
// returns every cell index whose header-declared bounds intersect the
// query box.
func (r *Reader) FindCellsInBounds(scale Scale, minLat, minLon, maxLat, maxLon float64) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index.EnsureScaleIndexed(r.db, scale)
	return r.index.Query(scale, minLat, minLon, maxLat, maxLon)
}

// GetFeaturesInBounds resolves matching cells via the spatial index,
// reloads each (the cache may have evicted it since indexing), and
// returns references to every feature whose own geometry bounds
// intersect the query box.
func (r *Reader) GetFeaturesInBounds(scale Scale, minLat, minLon, maxLat, maxLon float64) ([]FeatureRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index.EnsureScaleIndexed(r.db, scale)
	cellIndices := r.index.Query(scale, minLat, minLon, maxLat, maxLon)

	var refs []FeatureRef
	for _, cellIndex := range cellIndices {
		c, err := r.getCellLocked(scale, cellIndex)
		if err != nil {
			continue
		}
		for i, f := range c.Features {
			fb := f.Geometry.Bounds()
			if fb[2] < minLon || fb[0] > maxLon || fb[3] < minLat || fb[1] > maxLat {
				continue
			}
			refs = append(refs, FeatureRef{Scale: scale, CellIndex: cellIndex, FeatureIndex: i})
		}
	}
	return refs, nil
}

// ResolveFeature looks up the feature named by a FeatureRef, reloading
// its cell if necessary.
func (r *Reader) ResolveFeature(ref FeatureRef) (cell.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.getCellLocked(ref.Scale, ref.CellIndex)
	if err != nil {
		return cell.Feature{}, err
	}
	if ref.FeatureIndex < 0 || ref.FeatureIndex >= len(c.Features) {
		return cell.Feature{}, &charterrors.CellNotFound{Scale: string(byte(ref.Scale)), CellIndex: ref.CellIndex}
	}
	return c.Features[ref.FeatureIndex], nil
}

// ScaleForZoom maps a Web-Mercator XYZ zoom level to the best-matching
// CM93 scale letter.
func ScaleForZoom(zoom int) Scale {
	switch {
	case zoom <= 3:
		return ScaleZ
	case zoom <= 5:
		return ScaleA
	case zoom <= 7:
		return ScaleB
	case zoom <= 9:
		return ScaleC
	case zoom <= 11:
		return ScaleD
	case zoom <= 13:
		return ScaleE
	case zoom <= 15:
		return ScaleF
	default:
		return ScaleG
	}
}

// ClearCache drops every cached cell. The spatial index is unaffected.
func (r *Reader) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[cellKey]*cell.Cell)
	r.order = nil
}

// CacheSize reports how many cells are currently held in the cell
// cache.
func (r *Reader) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Stats summarizes the database: cell counts per scale and, for every
// currently cached cell, feature counts per object class.
type Stats struct {
	TotalCells      int
	CellsByScale    map[string]int
	TotalFeatures   int
	FeaturesByClass map[uint16]int
}

// Stats gathers database-wide cell counts and cached-cell feature
// counts. Feature counts only reflect cells presently in cache — a
// full count would require loading every cell, which Stats avoids.
func (r *Reader) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{
		CellsByScale:    make(map[string]int),
		FeaturesByClass: make(map[uint16]int),
	}
	for _, scale := range AllScales {
		n := len(r.db.ListCells(scale))
		s.TotalCells += n
		s.CellsByScale[string(byte(scale))] = n
	}
	for _, c := range r.cache {
		for _, f := range c.Features {
			s.TotalFeatures++
			s.FeaturesByClass[f.ObjectClass]++
		}
	}
	return s
}
