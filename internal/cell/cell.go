// Package cell parses a single decrypted CM93 cell file into its header,
// edge table, and feature table, resolving feature geometry via edge
// references and the cell's coordinate transform.
package cell

import (
	"os"

	"github.com/saltwatch/cm93chart/internal/binreader"
	"github.com/saltwatch/cm93chart/internal/charterrors"
	"github.com/saltwatch/cm93chart/internal/cipher"
	"github.com/saltwatch/cm93chart/internal/dictionary"
	"github.com/saltwatch/cm93chart/internal/geometry"
)

// headerTotalLen is the prolog (10 bytes) plus fixed header (128 bytes).
const headerTotalLen = 138

// Header holds the decoded geographic and Mercator bounds and record
// counts from a cell file's 138-byte prolog+header.
type Header struct {
	VectorTableLen  uint32
	FeatureTableLen uint32

	LonMin, LatMin, LonMax, LatMax                    float64
	EastingMin, NorthingMin, EastingMax, NorthingMax float64

	EdgeCount    uint32
	FeatureCount uint32

	XRate float64
	YRate float64
}

// GeometryKind mirrors the CM93 on-disk geometry primitive code.
type GeometryKind uint8

const (
	GeomPoint GeometryKind = 1
	GeomLine  GeometryKind = 2
	GeomArea  GeometryKind = 4
	GeomSound GeometryKind = 8
)

// Feature is one parsed object record: its class code and assembled
// geometry. Attribute decoding lives alongside geometry assembly since
// both are bounded by the same actualDataBytes window.
type Feature struct {
	ObjectClass uint16
	FeatureID   uint16
	Kind        GeometryKind
	Geometry    geometry.Geometry
	Attributes  map[uint16]AttributeValue
}

// AttributeValue is a decoded CM93 attribute payload. Exactly one of the
// fields is meaningful, selected by Type.
type AttributeValue struct {
	Type  byte // 'I' int, 'F' float, 'A' string
	Int   int32
	Float float64
	Str   string
}

// Cell is a fully parsed CM93 cell.
type Cell struct {
	Header    Header
	Transform geometry.CellTransform
	Features  []Feature
}

// ParseHeaderOnly reads at most the leading 150 bytes of a cell file
// (it fails if fewer than the 138 prolog+header bytes are present) and
// returns its geographic bounds as [lonMin, latMin, lonMax, latMax],
// without reading or decoding the rest of the file. Used to build the
// per-scale spatial index cheaply.
func ParseHeaderOnly(path string) ([4]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return [4]float64{}, err
	}
	defer f.Close()

	buf := make([]byte, headerTotalLen+12)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return [4]float64{}, err
	}
	buf = buf[:n]
	if len(buf) < headerTotalLen {
		return [4]float64{}, &charterrors.InvalidCellData{Path: path, Reason: "file shorter than header"}
	}
	cipher.DecodeBuffer(buf)

	r := binreader.NewAt(buf, 10)
	lonMin, _ := r.ReadF64LE()
	latMin, _ := r.ReadF64LE()
	lonMax, _ := r.ReadF64LE()
	latMax, _ := r.ReadF64LE()
	return [4]float64{lonMin, latMin, lonMax, latMax}, nil
}

// Parse reads and decodes an entire cell file and assembles its
// features.
func Parse(path string) (*Cell, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < headerTotalLen {
		return nil, &charterrors.InvalidCellData{Path: path, Reason: "file shorter than header"}
	}
	cipher.DecodeBuffer(data)

	header, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	transform := geometry.CellTransform{
		EastingMin:  header.EastingMin,
		NorthingMin: header.NorthingMin,
		XRate:       header.XRate,
		YRate:       header.YRate,
	}

	features, err := parseFeatures(data, header, transform)
	if err != nil {
		return nil, err
	}

	return &Cell{Header: header, Transform: transform, Features: features}, nil
}

func parseHeader(data []byte) (Header, error) {
	r := binreader.New(data)

	_, _ = r.ReadU16LE() // word0: prolog+header length, always 138
	vectorTableLen, _ := r.ReadU32LE()
	featureTableLen, _ := r.ReadU32LE()

	var h Header
	h.VectorTableLen = vectorTableLen
	h.FeatureTableLen = featureTableLen

	var err error
	if h.LonMin, err = r.ReadF64LE(); err != nil {
		return h, &charterrors.InvalidCellData{Path: "", Reason: "truncated header bounds"}
	}
	h.LatMin, _ = r.ReadF64LE()
	h.LonMax, _ = r.ReadF64LE()
	h.LatMax, _ = r.ReadF64LE()
	h.EastingMin, _ = r.ReadF64LE()
	h.NorthingMin, _ = r.ReadF64LE()
	h.EastingMax, _ = r.ReadF64LE()
	h.NorthingMax, _ = r.ReadF64LE()

	edgeCount, _ := r.ReadU16LE()
	h.EdgeCount = uint32(edgeCount)
	_, _ = r.ReadU32LE() // n_vector_points
	_, _ = r.ReadU32LE() // reserved
	_, _ = r.ReadU32LE() // reserved
	_, _ = r.ReadU16LE() // point3d_count (unused: see decision in SPEC_FULL.md §9)

	_, _ = r.ReadU32LE() // reserved
	_, _ = r.ReadU32LE() // reserved
	_, _ = r.ReadU16LE() // point2d_count (unused: see decision in SPEC_FULL.md §9)
	_, _ = r.ReadU16LE() // reserved
	_, _ = r.ReadU16LE() // reserved
	featureCount, _ := r.ReadU16LE()
	h.FeatureCount = uint32(featureCount)

	deltaX := h.EastingMax - h.EastingMin
	deltaY := h.NorthingMax - h.NorthingMin
	if abs64(deltaX) > 0.001 {
		h.XRate = deltaX / 65535.0
	} else {
		h.XRate = 1.0
	}
	if abs64(deltaY) > 0.001 {
		h.YRate = deltaY / 65535.0
	} else {
		h.YRate = 1.0
	}

	return h, nil
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// parseFeatures assembles the edge table and then walks the feature
// table, resolving each feature's geometry via its edge references.
func parseFeatures(data []byte, header Header, transform geometry.CellTransform) ([]Feature, error) {
	vectorStart := headerTotalLen
	featureStart := vectorStart + int(header.VectorTableLen)
	featureEnd := featureStart + int(header.FeatureTableLen)
	if featureEnd > len(data) {
		featureEnd = len(data)
	}

	edges := parseEdges(data, vectorStart, featureStart, int(header.EdgeCount), transform)

	features := make([]Feature, 0, header.FeatureCount)
	r := binreader.NewAt(data, featureStart)

	for i := uint32(0); i < header.FeatureCount; i++ {
		if r.Pos()+4 > featureEnd {
			break
		}
		objectType, err := r.ReadU8()
		if err != nil {
			break
		}
		geomPrim, err := r.ReadU8()
		if err != nil {
			break
		}
		objDescBytes, err := r.ReadU16LE()
		if err != nil {
			break
		}

		geomTypeCode := geomPrim & 0x0F
		hasGeometry := geomTypeCode == 2 || geomTypeCode == 4
		hasAttributes := geomPrim&0x80 != 0

		actualDataBytes := int(objDescBytes)
		if (hasGeometry || hasAttributes) && objDescBytes >= 4 {
			actualDataBytes = int(objDescBytes) - 4
		}

		featureDataEnd := r.Pos() + actualDataBytes
		if featureDataEnd > featureEnd {
			break
		}

		var kind GeometryKind
		switch geomTypeCode {
		case 1:
			kind = GeomPoint
		case 2:
			kind = GeomLine
		case 4:
			kind = GeomArea
		case 8:
			kind = GeomSound
		default:
			r.Seek(featureDataEnd)
			continue
		}

		var geom geometry.Geometry
		switch geomTypeCode {
		case 2, 4:
			geom = assembleEdgeGeometry(r, featureDataEnd, edges, transform, kind)
		case 1, 8:
			// Point/sounding index arrays are never populated by this
			// parser (decision recorded in SPEC_FULL.md §9): treat as
			// empty-geometry features rather than guessing at an index.
			geom = geometry.Geometry{Kind: geometry.KindPoint}
		}

		attrs := parseAttributes(r, featureDataEnd, hasAttributes)
		r.Seek(featureDataEnd)

		features = append(features, Feature{
			ObjectClass: uint16(objectType),
			FeatureID:   uint16(i),
			Kind:        kind,
			Geometry:    geom,
			Attributes:  attrs,
		})
	}

	return features, nil
}

// parseAttributes reads the trailing attribute list present when the
// feature's geom_prim attribute bit is set: a sequence of (u16 code,
// u8 type tag, type-dependent value) triples running to dataEnd. The
// type tag is one of 'I' (i32), 'F' (f64), or 'A' (u16-length-prefixed
// string); an unrecognized tag halts the scan rather than guessing a
// width, since misreading one entry misaligns every later one.
func parseAttributes(r *binreader.Reader, dataEnd int, present bool) map[uint16]AttributeValue {
	attrs := make(map[uint16]AttributeValue)
	if !present {
		return attrs
	}
	for r.Pos()+3 <= dataEnd {
		code, err := r.ReadU16LE()
		if err != nil {
			break
		}
		tag, err := r.ReadU8()
		if err != nil {
			break
		}
		switch tag {
		case 'I':
			if r.Pos()+4 > dataEnd {
				return attrs
			}
			v, _ := r.ReadU32LE()
			attrs[code] = AttributeValue{Type: 'I', Int: int32(v)}
		case 'F':
			if r.Pos()+8 > dataEnd {
				return attrs
			}
			v, _ := r.ReadF64LE()
			attrs[code] = AttributeValue{Type: 'F', Float: v}
		case 'A':
			if r.Pos()+2 > dataEnd {
				return attrs
			}
			strLen, _ := r.ReadU16LE()
			if r.Pos()+int(strLen) > dataEnd {
				return attrs
			}
			b, _ := r.ReadBytes(int(strLen))
			attrs[code] = AttributeValue{Type: 'A', Str: string(b)}
		default:
			return attrs
		}
	}
	return attrs
}

// assembleEdgeGeometry reads an n-element edge-reference list and
// stitches the referenced edges into one Geometry, skipping the
// duplicate junction vertex between consecutive edges.
func assembleEdgeGeometry(r *binreader.Reader, dataEnd int, edges [][]geometry.Point, transform geometry.CellTransform, kind GeometryKind) geometry.Geometry {
	gKind := geometry.KindLine
	if kind == GeomArea {
		gKind = geometry.KindArea
	}

	if r.Pos()+2 > dataEnd {
		return geometry.Geometry{Kind: gKind}
	}
	nElements, _ := r.ReadU16LE()

	var points []geometry.Point
	for e := uint16(0); e < nElements; e++ {
		if r.Pos()+2 > dataEnd {
			break
		}
		edgeRef, _ := r.ReadU16LE()
		actualIndex := int(edgeRef & 0x1FFF)
		reverse := edgeRef&0x2000 != 0

		if actualIndex >= len(edges) {
			continue
		}
		edgePoints := append([]geometry.Point(nil), edges[actualIndex]...)
		if reverse {
			for l, r2 := 0, len(edgePoints)-1; l < r2; l, r2 = l+1, r2-1 {
				edgePoints[l], edgePoints[r2] = edgePoints[r2], edgePoints[l]
			}
		}
		if len(points) > 0 && len(edgePoints) > 0 {
			points = append(points, edgePoints[1:]...)
		} else {
			points = append(points, edgePoints...)
		}
	}

	ringStarts := []int{0}
	return geometry.Geometry{Kind: gKind, Points: points, RingStarts: ringStarts}
}

// parseEdges reads the vector section's edge records: each is a u16
// point count followed by that many raw (x,y) cell-local coordinate
// pairs, transformed immediately to geographic points.
func parseEdges(data []byte, start, limit, edgeCount int, transform geometry.CellTransform) [][]geometry.Point {
	edges := make([][]geometry.Point, 0, edgeCount)
	r := binreader.NewAt(data, start)

	for e := 0; e < edgeCount; e++ {
		if r.Pos()+2 > limit {
			break
		}
		nPoints, err := r.ReadU16LE()
		if err != nil {
			break
		}
		xs := make([]int32, 0, nPoints)
		ys := make([]int32, 0, nPoints)
		for p := uint16(0); p < nPoints; p++ {
			if r.Pos()+4 > limit {
				break
			}
			x, _ := r.ReadU16LE()
			y, _ := r.ReadU16LE()
			xs = append(xs, int32(x))
			ys = append(ys, int32(y))
		}
		edges = append(edges, transform.ToGeoBatch(xs, ys))
	}
	return edges
}

// Bounds returns the cell's geographic envelope as declared in its
// header, in preference to recomputing it from feature geometry, since
// many features carry empty geometry.
func (c *Cell) Bounds() [4]float64 {
	return [4]float64{c.Header.LonMin, c.Header.LatMin, c.Header.LonMax, c.Header.LatMax}
}

// FeaturesByClass returns all features whose ObjectClass matches code.
func (c *Cell) FeaturesByClass(code uint16) []Feature {
	var out []Feature
	for _, f := range c.Features {
		if f.ObjectClass == code {
			out = append(out, f)
		}
	}
	return out
}

// Sounding is a single depth reading. Point is the zero value: the
// parser never populates point/sounding geometry (see parseFeatures),
// so a depth label pass must derive placement from the cell's bounds
// rather than per-sounding coordinates.
type Sounding struct {
	Point geometry.Point
	Depth float64
}

// Soundings returns every SOUNDG feature with a decoded VALSOU depth
// attribute.
func (c *Cell) Soundings() []Sounding {
	var out []Sounding
	for _, f := range c.FeaturesByClass(dictionary.ObjSoundg) {
		attr, ok := f.Attributes[dictionary.AttrValsou]
		if !ok || attr.Type != 'F' {
			continue
		}
		out = append(out, Sounding{Depth: attr.Float})
	}
	return out
}

// DepthContour pairs a DEPCNT feature's line geometry with its decoded
// VALDCO depth attribute.
type DepthContour struct {
	Geometry geometry.Geometry
	Depth    float64
}

// DepthContours returns every DEPCNT feature with a decoded VALDCO
// depth attribute.
func (c *Cell) DepthContours() []DepthContour {
	var out []DepthContour
	for _, f := range c.FeaturesByClass(dictionary.ObjDepCnt) {
		attr, ok := f.Attributes[dictionary.AttrValdco]
		if !ok || attr.Type != 'F' {
			continue
		}
		out = append(out, DepthContour{Geometry: f.Geometry, Depth: attr.Float})
	}
	return out
}
