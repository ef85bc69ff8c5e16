package cm93

import (
	"testing"

	"github.com/saltwatch/cm93chart/internal/cell"
	"github.com/saltwatch/cm93chart/internal/dictionary"
	"github.com/saltwatch/cm93chart/internal/geometry"
	"github.com/saltwatch/cm93chart/pkg/rasterize"
)

func TestTileXYZBoundsWorldTile(t *testing.T) {
	lonMin, latMin, lonMax, latMax := TileXYZBounds(0, 0, 0)
	if lonMin != -180 || lonMax != 180 {
		t.Fatalf("lon bounds = [%v,%v], want [-180,180]", lonMin, lonMax)
	}
	if latMin >= latMax {
		t.Fatalf("latMin (%v) >= latMax (%v)", latMin, latMax)
	}
}

func TestClassifyLayer(t *testing.T) {
	cases := []struct {
		code uint16
		want string
	}{
		{dictionary.ObjLndAre, "land"},
		{dictionary.ObjDepAre, "depth_areas"},
		{dictionary.ObjSoundg, "soundings"},
		{dictionary.ObjCoalne, "coastline"},
		{9999, "other"},
	}
	for _, c := range cases {
		if got := ClassifyLayer(c.code); got != c.want {
			t.Errorf("ClassifyLayer(%d) = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestPassesFiltersDropsMetadataClass(t *testing.T) {
	f := cell.Feature{
		ObjectClass: 250,
		Kind:        cell.GeomArea,
		Geometry:    geometry.Geometry{Kind: geometry.KindArea, Points: []geometry.Point{{Lon: 0}, {Lon: 1}, {Lon: 2}}, RingStarts: []int{0}},
	}
	if passesFilters(f) {
		t.Fatal("passesFilters() = true for object class >= 200, want false")
	}
}

func TestPassesFiltersDropsBoundaryConnector(t *testing.T) {
	f := cell.Feature{
		ObjectClass: 35,
		Kind:        cell.GeomLine,
		Geometry: geometry.Geometry{
			Kind:   geometry.KindLine,
			Points: []geometry.Point{{Lon: 10, Lat: 50}, {Lon: 10, Lat: 51}},
		},
	}
	if passesFilters(f) {
		t.Fatal("passesFilters() = true for vertical two-point boundary connector, want false")
	}
}

func TestPassesFiltersDropsDegenerateSliver(t *testing.T) {
	f := cell.Feature{
		ObjectClass: 44,
		Kind:        cell.GeomArea,
		Geometry: geometry.Geometry{
			Kind: geometry.KindArea,
			Points: []geometry.Point{
				{Lon: 10, Lat: 50}, {Lon: 10.0001, Lat: 50}, {Lon: 10.0001, Lat: 55}, {Lon: 10, Lat: 55},
			},
			RingStarts: []int{0},
		},
	}
	if passesFilters(f) {
		t.Fatal("passesFilters() = true for a degenerate sliver polygon, want false")
	}
}

func TestPassesFiltersKeepsValidLine(t *testing.T) {
	f := cell.Feature{
		ObjectClass: 35,
		Kind:        cell.GeomLine,
		Geometry: geometry.Geometry{
			Kind:   geometry.KindLine,
			Points: []geometry.Point{{Lon: 10, Lat: 50}, {Lon: 10.5, Lat: 51}},
		},
	}
	if !passesFilters(f) {
		t.Fatal("passesFilters() = false for a valid diagonal line, want true")
	}
}

func TestTileGeoJSONAndRenderTilePNG(t *testing.T) {
	root := t.TempDir()
	writeDictionaries(t, root)
	writeCellFile(t, root, "CHART1", ScaleZ, "00000001", 81, [4]float64{-180, -85, 180, 85})

	db, err := OpenDatabase(root, "CM93OBJ.DIC", "CM93ATTR.DIC")
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	r := Open(db, 10)

	fc, err := TileGeoJSON(r, 0, 0, 0)
	if err != nil {
		t.Fatalf("TileGeoJSON() error = %v", err)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("TileGeoJSON() returned %d features, want 1", len(fc.Features))
	}
	if fc.Features[0].Properties["layer"] != "land" {
		t.Errorf("layer = %v, want land", fc.Features[0].Properties["layer"])
	}

	png, err := RenderTilePNG(r, 0, 0, 0, rasterize.DayColors())
	if err != nil {
		t.Fatalf("RenderTilePNG() error = %v", err)
	}
	if len(png) == 0 {
		t.Fatal("RenderTilePNG() returned empty PNG for a tile with a rendered feature")
	}
}
