// Package rasterize renders assembled chart geometry onto a raw RGBA
// tile buffer using hand-rolled Bresenham line drawing, disc points, and
// even-odd scanline polygon fill, matching the pixel-level behavior the
// original renderer produced rather than a general-purpose 2D library.
package rasterize

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sort"

	"github.com/saltwatch/cm93chart/internal/geometry"
)

// Config controls a tile render pass.
type Config struct {
	TileSize        int
	Background      color.NRGBA
	LineWidth       int
	OutlineDarkenBy int // per-channel darken amount for area outlines
}

// DefaultConfig returns the standard 256px tile render configuration.
func DefaultConfig(colors S52Colors) Config {
	return Config{
		TileSize:        256,
		Background:      colors.NoData,
		LineWidth:       1,
		OutlineDarkenBy: 30,
	}
}

// Rasterizer draws into a raw RGBA buffer sized TileSize x TileSize,
// addressed geo-to-pixel via the supplied tile bounds.
type Rasterizer struct {
	cfg    Config
	bounds TileBounds
	buffer []byte // tightly packed RGBA, row-major
}

// TileBounds is a tile's geographic envelope in Web Mercator degrees.
type TileBounds struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// New creates a Rasterizer for one tile render, with the buffer cleared
// to cfg.Background.
func New(cfg Config, bounds TileBounds) *Rasterizer {
	r := &Rasterizer{cfg: cfg, bounds: bounds}
	r.buffer = make([]byte, cfg.TileSize*cfg.TileSize*4)
	r.Clear()
	return r
}

// Clear fills the buffer with the background color.
func (r *Rasterizer) Clear() {
	bg := r.cfg.Background
	for i := 0; i < len(r.buffer); i += 4 {
		r.buffer[i] = bg.R
		r.buffer[i+1] = bg.G
		r.buffer[i+2] = bg.B
		r.buffer[i+3] = bg.A
	}
}

// IsEmpty reports whether every pixel is still fully transparent, i.e.
// nothing was drawn onto the background.
func (r *Rasterizer) IsEmpty() bool {
	for i := 3; i < len(r.buffer); i += 4 {
		if r.buffer[i] != 0 {
			return false
		}
	}
	return true
}

// geoToPixel maps a geographic point to fractional tile pixel
// coordinates.
func (r *Rasterizer) geoToPixel(p geometry.Point) (float64, float64) {
	size := float64(r.cfg.TileSize)
	lonSpan := r.bounds.MaxLon - r.bounds.MinLon
	latSpan := r.bounds.MaxLat - r.bounds.MinLat
	x := (p.Lon - r.bounds.MinLon) / lonSpan * size
	y := (r.bounds.MaxLat - p.Lat) / latSpan * size
	return x, y
}

// setPixel alpha-blends c onto the pixel at (x,y), a no-op outside the
// buffer.
func (r *Rasterizer) setPixel(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= r.cfg.TileSize || y >= r.cfg.TileSize {
		return
	}
	if c.A == 0 {
		return
	}
	i := (y*r.cfg.TileSize + x) * 4
	if c.A == 255 {
		r.buffer[i], r.buffer[i+1], r.buffer[i+2], r.buffer[i+3] = c.R, c.G, c.B, 255
		return
	}
	alpha := float64(c.A) / 255.0
	inv := 1 - alpha
	r.buffer[i] = byte(float64(c.R)*alpha + float64(r.buffer[i])*inv)
	r.buffer[i+1] = byte(float64(c.G)*alpha + float64(r.buffer[i+1])*inv)
	r.buffer[i+2] = byte(float64(c.B)*alpha + float64(r.buffer[i+2])*inv)
	existingA := float64(r.buffer[i+3])
	r.buffer[i+3] = byte(float64(c.A)*alpha + existingA*inv)
}

// DrawLine rasterizes a single segment with Bresenham's algorithm.
func (r *Rasterizer) DrawLine(x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		r.setPixel(x, y, c)
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DrawPoint draws a filled disc of the given pixel radius.
func (r *Rasterizer) DrawPoint(cx, cy, radius int, c color.NRGBA) {
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				r.setPixel(cx+dx, cy+dy, c)
			}
		}
	}
}

// DrawPolygon fills a set of rings with an even-odd scanline algorithm
// and strokes every ring with a darkened outline.
func (r *Rasterizer) DrawPolygon(rings [][]geometry.Point, fill color.NRGBA, outlineDarkenBy int) {
	if len(rings) == 0 {
		return
	}

	minY, maxY := r.cfg.TileSize, 0
	type pixRing [][2]float64
	pixRings := make([]pixRing, 0, len(rings))
	for _, ring := range rings {
		pr := make(pixRing, len(ring))
		for i, p := range ring {
			x, y := r.geoToPixel(p)
			pr[i] = [2]float64{x, y}
			iy := int(y)
			if iy < minY {
				minY = iy
			}
			if iy > maxY {
				maxY = iy
			}
		}
		pixRings = append(pixRings, pr)
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= r.cfg.TileSize {
		maxY = r.cfg.TileSize - 1
	}

	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for _, pr := range pixRings {
			n := len(pr)
			for i := 0; i < n; i++ {
				a := pr[i]
				b := pr[(i+1)%n]
				if (a[1] <= fy && b[1] > fy) || (b[1] <= fy && a[1] > fy) {
					t := (fy - a[1]) / (b[1] - a[1])
					xs = append(xs, a[0]+t*(b[0]-a[0]))
				}
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xStart := int(xs[i])
			xEnd := int(xs[i+1])
			for x := xStart; x <= xEnd; x++ {
				r.setPixel(x, y, fill)
			}
		}
	}

	outline := darken(fill, outlineDarkenBy)
	for _, ring := range rings {
		for i := range ring {
			a := ring[i]
			b := ring[(i+1)%len(ring)]
			ax, ay := r.geoToPixel(a)
			bx, by := r.geoToPixel(b)
			r.DrawLine(int(ax), int(ay), int(bx), int(by), outline)
		}
	}
}

func darken(c color.NRGBA, by int) color.NRGBA {
	clamp := func(v, d int) uint8 {
		nv := int(v) - d
		if nv < 0 {
			nv = 0
		}
		return uint8(nv)
	}
	return color.NRGBA{R: clamp(int(c.R), by), G: clamp(int(c.G), by), B: clamp(int(c.B), by), A: c.A}
}

// RenderFeature draws one geometry, dispatching by kind.
func (r *Rasterizer) RenderFeature(g geometry.Geometry, c color.NRGBA, cfg Config) {
	switch g.Kind {
	case geometry.KindPoint:
		if len(g.Points) == 0 {
			return
		}
		x, y := r.geoToPixel(g.Points[0])
		r.DrawPoint(int(x), int(y), 3, c)
	case geometry.KindLine:
		for i := 0; i+1 < len(g.Points); i++ {
			x0, y0 := r.geoToPixel(g.Points[i])
			x1, y1 := r.geoToPixel(g.Points[i+1])
			r.DrawLine(int(x0), int(y0), int(x1), int(y1), c)
		}
	case geometry.KindArea:
		rings := splitRings(g)
		r.DrawPolygon(rings, c, cfg.OutlineDarkenBy)
	}
}

func splitRings(g geometry.Geometry) [][]geometry.Point {
	starts := g.RingStarts
	if len(starts) == 0 {
		starts = []int{0}
	}
	rings := make([][]geometry.Point, 0, len(starts))
	for i, start := range starts {
		end := len(g.Points)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		rings = append(rings, g.Points[start:end])
	}
	return rings
}

// PNG encodes the buffer as an 8-bit RGBA PNG.
func (r *Rasterizer) PNG() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, r.cfg.TileSize, r.cfg.TileSize))
	copy(img.Pix, r.buffer)
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
