package cm93

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/saltwatch/cm93chart/internal/cipher"
	"github.com/saltwatch/cm93chart/internal/geometry"
)

// buildCellFixture assembles one decoded cell file declaring the given
// geographic bounds, one edge, and one line feature of the given object
// class referencing that edge — the same shape internal/cell's own
// fixtures use.
func buildCellFixture(objectClass byte, lonMin, latMin, lonMax, latMax float64) []byte {
	buf := make([]byte, 0, 160)

	putU16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }
	putU32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	putF64 := func(v float64) { buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v)) }

	eastingMin, northingMin := geometry.GeoToMercator(lonMin, latMin)
	eastingMax, northingMax := geometry.GeoToMercator(lonMax, latMax)

	putU16(138)
	putU32(10)
	putU32(8)

	putF64(lonMin)
	putF64(latMin)
	putF64(lonMax)
	putF64(latMax)
	putF64(eastingMin)
	putF64(northingMin)
	putF64(eastingMax)
	putF64(northingMax)
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

	const headerTotalLen = 138
	for len(buf) < headerTotalLen {
		buf = append(buf, 0)
	}

	putU16(2)
	putU16(100)
	putU16(200)
	putU16(300)
	putU16(400)

	buf = append(buf, objectClass)
	buf = append(buf, 0x02) // LINE, no attributes
	putU16(8)
	putU16(1)
	putU16(0)

	return buf
}

// writeCellFile writes an encoded cell fixture to root/<subdir>/<scale>/<stem>.
func writeCellFile(t *testing.T, root, subdir string, scale Scale, stem string, objectClass byte, bounds [4]float64) {
	t.Helper()
	dir := filepath.Join(root, subdir, string(byte(scale)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	decoded := buildCellFixture(objectClass, bounds[0], bounds[1], bounds[2], bounds[3])
	encoded := append([]byte(nil), decoded...)
	cipher.EncodeBuffer(encoded)
	if err := os.WriteFile(filepath.Join(dir, stem), encoded, 0o644); err != nil {
		t.Fatal(err)
	}
}

// writeDictionaries writes minimal CM93OBJ.DIC/CM93ATTR.DIC files under
// root so OpenDatabase's validation and Dictionary.Load both succeed.
func writeDictionaries(t *testing.T, root string) {
	t.Helper()
	obj := "81,LNDARE,Land area,7\n44,DEPARE,Depth area,7\n147,SOUNDG,Sounding,1\n"
	attr := "87,DRVAL1,F\n116,OBJNAM,A\n"
	if err := os.WriteFile(filepath.Join(root, "CM93OBJ.DIC"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "CM93ATTR.DIC"), []byte(attr), 0o644); err != nil {
		t.Fatal(err)
	}
}
