// Package geometry implements the CM93 cell-local coordinate transform
// and the tagged geometry value produced by feature assembly.
package geometry

import "math"

// cm93SemimajorAxis is the semi-major axis, in meters, of the
// International 1924 ellipsoid CM93 coordinates are referenced to.
const cm93SemimajorAxis = 6378388.0

// Point is a single geographic coordinate, longitude then latitude, in
// degrees.
type Point struct {
	Lon float64
	Lat float64
}

// GeoToMercator projects a geographic coordinate to spherical Mercator
// meters on the CM93 reference ellipsoid.
func GeoToMercator(lon, lat float64) (x, y float64) {
	lonRad := lon * math.Pi / 180.0
	latRad := lat * math.Pi / 180.0
	x = cm93SemimajorAxis * lonRad
	y = cm93SemimajorAxis * math.Log(math.Tan(math.Pi/4+latRad/2))
	return x, y
}

// MercatorToGeo inverts GeoToMercator.
func MercatorToGeo(x, y float64) (lon, lat float64) {
	lonRad := x / cm93SemimajorAxis
	latRad := 2*math.Atan(math.Exp(y/cm93SemimajorAxis)) - math.Pi/2
	lon = lonRad * 180.0 / math.Pi
	lat = latRad * 180.0 / math.Pi
	return lon, lat
}

// CellTransform converts a cell's 16-bit local integer coordinates into
// geographic points, via the cell's Mercator-space origin and per-axis
// scale rates recovered from the cell header.
type CellTransform struct {
	EastingMin  float64
	NorthingMin float64
	XRate       float64
	YRate       float64
}

// ToGeo converts one cell-local coordinate pair to a geographic point.
func (t CellTransform) ToGeo(x, y int32) Point {
	mercX := t.EastingMin + float64(x)*t.XRate
	mercY := t.NorthingMin + float64(y)*t.YRate
	lon, lat := MercatorToGeo(mercX, mercY)
	return Point{Lon: lon, Lat: lat}
}

// ToGeoBatch converts a flat sequence of (x,y) cell-local pairs.
func (t CellTransform) ToGeoBatch(xs, ys []int32) []Point {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	out := make([]Point, n)
	for i := 0; i < n; i++ {
		out[i] = t.ToGeo(xs[i], ys[i])
	}
	return out
}

// Kind tags the interpretation of a Geometry's Points/RingStarts.
type Kind int

const (
	// KindPoint is a single-vertex geometry (point features, soundings).
	KindPoint Kind = iota
	// KindLine is an open or closed polyline assembled from edges.
	KindLine
	// KindArea is one or more rings assembled from edges.
	KindArea
)

// Geometry is the assembled geographic shape of a feature. RingStarts
// holds the index, within Points, of the first vertex of each ring or
// line segment; it always contains at least one entry (0) for a
// non-empty geometry.
type Geometry struct {
	Kind       Kind
	Points     []Point
	RingStarts []int
}

// Bounds returns the [minLon, minLat, maxLon, maxLat] envelope of the
// geometry's points, or the zero envelope when there are no points.
func (g Geometry) Bounds() [4]float64 {
	if len(g.Points) == 0 {
		return [4]float64{0, 0, 0, 0}
	}
	minLon, minLat := g.Points[0].Lon, g.Points[0].Lat
	maxLon, maxLat := g.Points[0].Lon, g.Points[0].Lat
	for _, p := range g.Points[1:] {
		if p.Lon < minLon {
			minLon = p.Lon
		}
		if p.Lon > maxLon {
			maxLon = p.Lon
		}
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
	}
	return [4]float64{minLon, minLat, maxLon, maxLat}
}

// IsValid reports whether the geometry has enough vertices for its
// kind: at least 1 for a point, 2 for a line, 3 for an area.
func (g Geometry) IsValid() bool {
	switch g.Kind {
	case KindPoint:
		return len(g.Points) >= 1
	case KindLine:
		return len(g.Points) >= 2
	case KindArea:
		return len(g.Points) >= 3
	default:
		return false
	}
}

// ToCoordinates renders the geometry as GeoJSON-style nested coordinate
// arrays: a single [lon,lat] pair for a point, a flat ring for a line,
// and a list of rings for an area.
func (g Geometry) ToCoordinates() interface{} {
	switch g.Kind {
	case KindPoint:
		if len(g.Points) == 0 {
			return []float64{}
		}
		return []float64{g.Points[0].Lon, g.Points[0].Lat}
	case KindLine:
		return ringCoords(g.Points)
	case KindArea:
		starts := g.RingStarts
		if len(starts) == 0 {
			starts = []int{0}
		}
		rings := make([][][]float64, 0, len(starts))
		for i, start := range starts {
			end := len(g.Points)
			if i+1 < len(starts) {
				end = starts[i+1]
			}
			rings = append(rings, ringCoords(g.Points[start:end]))
		}
		return rings
	default:
		return nil
	}
}

func ringCoords(points []Point) [][]float64 {
	out := make([][]float64, len(points))
	for i, p := range points {
		out[i] = []float64{p.Lon, p.Lat}
	}
	return out
}
