package cell

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/saltwatch/cm93chart/internal/cipher"
)

// buildFixture assembles one decoded cell file: a header declaring one
// edge and one line feature, the edge's two cell-local points, and a
// feature record whose single edge reference resolves to that edge.
func buildFixture() []byte {
	buf := make([]byte, 0, 160)

	putU16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }
	putU32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	putF64 := func(v float64) { buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v)) }

	// Prolog.
	putU16(138) // word0
	putU32(10)  // vector table len
	putU32(8)   // feature table len

	// Header body.
	putF64(10.0) // lonMin
	putF64(50.0) // latMin
	putF64(11.0) // lonMax
	putF64(51.0) // latMax
	putF64(0)    // eastingMin
	putF64(0)    // northingMin
	putF64(65535)
	putF64(65535)
	putU16(1)  // edgeCount
	putU32(0)  // n_vector_points
	putU32(0)  // reserved
	putU32(0)  // reserved
	putU16(0)  // point3d_count
	putU32(0)  // reserved
	putU32(0)  // reserved
	putU16(0)  // point2d_count
	putU16(0)  // reserved
	putU16(0)  // reserved
	putU16(1)  // featureCount

	for len(buf) < headerTotalLen {
		buf = append(buf, 0)
	}

	// Vector section: one edge, two points.
	putU16(2)   // npoints
	putU16(100) // pt1.x
	putU16(200) // pt1.y
	putU16(300) // pt2.x
	putU16(400) // pt2.y

	// Feature section: one line feature referencing edge 0.
	buf = append(buf, 81)  // object class (LNDARE)
	buf = append(buf, 0x02) // geom_prim: LINE, no attributes
	putU16(8)              // obj_desc_bytes
	putU16(1)               // n_elements
	putU16(0)               // edge_index 0, no reverse

	return buf
}

func TestParseLineFeature(t *testing.T) {
	decoded := buildFixture()
	encoded := append([]byte(nil), decoded...)
	cipher.EncodeBuffer(encoded)

	dir := t.TempDir()
	path := filepath.Join(dir, "00000001.cell")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if c.Header.EdgeCount != 1 || c.Header.FeatureCount != 1 {
		t.Fatalf("header counts = edge:%d feature:%d, want 1,1", c.Header.EdgeCount, c.Header.FeatureCount)
	}
	if len(c.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1", len(c.Features))
	}
	f := c.Features[0]
	if f.ObjectClass != 81 {
		t.Errorf("ObjectClass = %d, want 81", f.ObjectClass)
	}
	if f.Kind != GeomLine {
		t.Errorf("Kind = %v, want GeomLine", f.Kind)
	}
	if len(f.Geometry.Points) != 2 {
		t.Fatalf("len(Points) = %d, want 2", len(f.Geometry.Points))
	}
	if !f.Geometry.IsValid() {
		t.Error("Geometry.IsValid() = false, want true")
	}

	bounds := c.Bounds()
	want := [4]float64{10.0, 50.0, 11.0, 51.0}
	if bounds != want {
		t.Errorf("Bounds() = %v, want %v", bounds, want)
	}
}

func TestParseHeaderOnlyMatchesFullParse(t *testing.T) {
	decoded := buildFixture()
	encoded := append([]byte(nil), decoded...)
	cipher.EncodeBuffer(encoded)

	dir := t.TempDir()
	path := filepath.Join(dir, "00000001.cell")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatal(err)
	}

	bounds, err := ParseHeaderOnly(path)
	if err != nil {
		t.Fatalf("ParseHeaderOnly() error = %v", err)
	}
	want := [4]float64{10.0, 50.0, 11.0, 51.0}
	if bounds != want {
		t.Errorf("ParseHeaderOnly() = %v, want %v", bounds, want)
	}
}

// buildFixtureWithAttribute builds a one-edge, one-area-feature cell
// whose feature carries a single float attribute (DRVAL1-style).
func buildFixtureWithAttribute() []byte {
	buf := make([]byte, 0, 200)

	putU16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }
	putU32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	putF64 := func(v float64) { buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v)) }

	putU16(138)
	putU32(14) // vector table len: one 3-point edge
	putU32(0)  // feature table len, patched below

	putF64(10.0)
	putF64(50.0)
	putF64(11.0)
	putF64(51.0)
	putF64(0)
	putF64(0)
	putF64(65535)
	putF64(65535)
	putU16(1) // edgeCount
	putU32(0)
	putU32(0)
	putU32(0)
	putU16(0)
	putU32(0)
	putU32(0)
	putU16(0)
	putU16(0)
	putU16(0)
	putU16(1) // featureCount

	for len(buf) < headerTotalLen {
		buf = append(buf, 0)
	}

	// Vector section: one edge, three points (closed ring).
	putU16(3)
	putU16(0)
	putU16(0)
	putU16(100)
	putU16(0)
	putU16(0)
	putU16(100)

	featureSectionStart := len(buf)

	// Feature section: one area feature with attribute bit set,
	// referencing edge 0, carrying one DRVAL1 float attribute.
	buf = append(buf, 44)   // DEPARE
	buf = append(buf, 0x84) // AREA | attribute bit (0x80)
	bodyStart := len(buf)
	putU16(0) // obj_desc_bytes, patched below
	putU16(1) // n_elements
	putU16(0) // edge_index 0
	putU16(87) // DRVAL1 code
	buf = append(buf, 'F')
	putF64(12.5)

	bodyLen := len(buf) - bodyStart - 2 // minus the obj_desc_bytes field itself
	objDescBytes := uint16(bodyLen + 4) // +4 overhead restored
	binary.LittleEndian.PutUint16(buf[bodyStart:bodyStart+2], objDescBytes)

	featureTableLen := len(buf) - featureSectionStart
	binary.LittleEndian.PutUint32(buf[6:10], uint32(featureTableLen))

	return buf
}

func TestParseFeatureWithAttribute(t *testing.T) {
	decoded := buildFixtureWithAttribute()
	encoded := append([]byte(nil), decoded...)
	cipher.EncodeBuffer(encoded)

	dir := t.TempDir()
	path := filepath.Join(dir, "attr.cell")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(c.Features) != 1 {
		t.Fatalf("len(Features) = %d, want 1", len(c.Features))
	}
	f := c.Features[0]
	attr, ok := f.Attributes[87]
	if !ok {
		t.Fatalf("feature missing DRVAL1 attribute: %+v", f.Attributes)
	}
	if attr.Type != 'F' || attr.Float != 12.5 {
		t.Fatalf("DRVAL1 attribute = %+v, want Type=F Float=12.5", attr)
	}
}

func TestParseTooShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.cell")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(path); err == nil {
		t.Fatal("Parse() on short file: expected error, got nil")
	}
}
