package cm93

import (
	"fmt"
	"math"
	"strconv"

	"github.com/saltwatch/cm93chart/internal/cell"
	"github.com/saltwatch/cm93chart/internal/dictionary"
	"github.com/saltwatch/cm93chart/internal/geometry"
	"github.com/saltwatch/cm93chart/pkg/rasterize"
)

// attrString renders a decoded attribute value as a string, matching
// the on-disk type tag.
func attrString(v cell.AttributeValue) string {
	switch v.Type {
	case 'I':
		return strconv.Itoa(int(v.Int))
	case 'F':
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.Str
	}
}

// TileXYZBounds converts a standard Web-Mercator XYZ tile coordinate to
// its geographic envelope.
func TileXYZBounds(z, x, y int) (lonMin, latMin, lonMax, latMax float64) {
	n := math.Exp2(float64(z))
	lonMin = float64(x)/n*360.0 - 180.0
	lonMax = float64(x+1)/n*360.0 - 180.0
	latMax = toDegrees(math.Atan(math.Sinh(math.Pi * (1 - 2*float64(y)/n))))
	latMin = toDegrees(math.Atan(math.Sinh(math.Pi * (1 - 2*float64(y+1)/n))))
	return
}

func toDegrees(rad float64) float64 { return rad * 180.0 / math.Pi }

// GeoJSONFeature is one emitted feature: geometry plus the properties
// table §4.7 specifies.
type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   GeoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// GeoJSONGeometry is the geometry sub-object of a GeoJSON feature.
type GeoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// FeatureCollection is a standard GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// objectClassMetaFloor is the threshold above which object classes are
// CM93-internal metadata (coverage, quality) rather than chart content.
const objectClassMetaFloor = 200

// TileGeoJSON resolves every feature intersecting a tile's bounds at
// the scale appropriate for its zoom level, applies the §4.7 filter
// rules, and returns a GeoJSON FeatureCollection.
func TileGeoJSON(r *Reader, z, x, y int) (FeatureCollection, error) {
	lonMin, latMin, lonMax, latMax := TileXYZBounds(z, x, y)
	scale := ScaleForZoom(z)

	refs, err := r.GetFeaturesInBounds(scale, latMin, lonMin, latMax, lonMax)
	if err != nil {
		return FeatureCollection{}, err
	}

	fc := FeatureCollection{Type: "FeatureCollection"}
	for _, ref := range refs {
		f, err := r.ResolveFeature(ref)
		if err != nil {
			continue
		}
		if !passesFilters(f) {
			continue
		}
		fc.Features = append(fc.Features, toGeoJSONFeature(f, r.db.Dictionary))
	}
	return fc, nil
}

// passesFilters applies the §4.7 drop rules to one feature.
func passesFilters(f cell.Feature) bool {
	if !f.Geometry.IsValid() {
		return false
	}
	if f.ObjectClass >= objectClassMetaFloor {
		return false
	}
	if f.Geometry.Kind == geometry.KindLine && isBoundaryConnector(f.Geometry.Points) {
		return false
	}
	if f.Geometry.Kind == geometry.KindArea && isDegenerateSliver(f.Geometry) {
		return false
	}
	return true
}

// isBoundaryConnector drops two-point lines that run exactly along a
// cell boundary (perfectly horizontal/vertical), and longer lines whose
// entire span is degenerate (< 0.1 degree) along a constant axis.
func isBoundaryConnector(points []geometry.Point) bool {
	if len(points) < 2 {
		return false
	}
	sameLon, sameLat := true, true
	minLon, maxLon := points[0].Lon, points[0].Lon
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, p := range points[1:] {
		if p.Lon != points[0].Lon {
			sameLon = false
		}
		if p.Lat != points[0].Lat {
			sameLat = false
		}
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
	if len(points) == 2 && (sameLon || sameLat) {
		return true
	}
	if sameLon && (maxLat-minLat) < 0.1 {
		return true
	}
	if sameLat && (maxLon-minLon) < 0.1 {
		return true
	}
	return false
}

// isDegenerateSliver drops area features whose bounding box is a
// near-zero-width or extreme-aspect-ratio rectangle.
func isDegenerateSliver(g geometry.Geometry) bool {
	b := g.Bounds()
	lonSpan := b[2] - b[0]
	latSpan := b[3] - b[1]
	if lonSpan < 1e-8 || latSpan < 1e-8 {
		return true
	}
	small, big := lonSpan, latSpan
	if small > big {
		small, big = big, small
	}
	if small > 0 && big/small > 50 && small < 0.01 {
		return true
	}
	return false
}

// toGeoJSONFeature converts a cell.Feature into the GeoJSON shape §4.7
// specifies, including layer classification and the raw attribute map.
func toGeoJSONFeature(f cell.Feature, dict *dictionary.Dictionary) GeoJSONFeature {
	geomType := "Point"
	switch f.Geometry.Kind {
	case geometry.KindLine:
		geomType = "LineString"
	case geometry.KindArea:
		geomType = "Polygon"
	}

	props := map[string]interface{}{
		"objClass": f.ObjectClass,
		"geomType": geomType,
		"layer":    ClassifyLayer(f.ObjectClass),
	}

	if dict != nil {
		if obj, ok := dict.Object(f.ObjectClass); ok {
			props["objAcronym"] = obj.Acronym
			props["objName"] = obj.Name
		}
	}

	if depth, ok := depthValue(f.Attributes); ok {
		props["depth"] = depth
	}
	if name, ok := f.Attributes[dictionary.AttrObjnam]; ok && name.Type == 'A' {
		props["name"] = name.Str
	}
	if colour, ok := f.Attributes[dictionary.AttrColour]; ok {
		props["color"] = attrString(colour)
	}

	for code, v := range f.Attributes {
		acronym := fmt.Sprintf("ATTR_%d", code)
		if dict != nil {
			acronym = dict.AttrAcronym(code)
		}
		props[acronym] = attrString(v)
	}

	return GeoJSONFeature{
		Type:       "Feature",
		Geometry:   GeoJSONGeometry{Type: geomType, Coordinates: f.Geometry.ToCoordinates()},
		Properties: props,
	}
}

// depthValue resolves a feature's display depth from VALSOU, VALDCO,
// then DRVAL1, the first one present.
func depthValue(attrs map[uint16]cell.AttributeValue) (float64, bool) {
	for _, code := range []uint16{dictionary.AttrValsou, dictionary.AttrValdco, dictionary.AttrDrval1} {
		if v, ok := attrs[code]; ok {
			switch v.Type {
			case 'F':
				return v.Float, true
			case 'I':
				return float64(v.Int), true
			}
		}
	}
	return 0, false
}

// ClassifyLayer maps an object class code to its styling bucket.
func ClassifyLayer(objectClass uint16) string {
	switch objectClass {
	case dictionary.ObjLights:
		return "lights"
	case dictionary.ObjBcnCar, dictionary.ObjBcnIsd, dictionary.ObjBcnLat, dictionary.ObjBcnSaw, dictionary.ObjBcnSpp:
		return "beacons"
	case dictionary.ObjBoyCar, dictionary.ObjBoyIsd, dictionary.ObjBoyLat, dictionary.ObjBoySaw, dictionary.ObjBoySpp:
		return "buoys"
	case dictionary.ObjSoundg:
		return "soundings"
	case dictionary.ObjDepCnt:
		return "depth_contours"
	case dictionary.ObjDepAre:
		return "depth_areas"
	case dictionary.ObjLndAre, dictionary.ObjLndElv, dictionary.ObjLndRgn:
		return "land"
	case dictionary.ObjCoalne:
		return "coastline"
	case dictionary.ObjSlcons:
		return "shoreline"
	case dictionary.ObjSeaAre:
		return "sea_area"
	case dictionary.ObjRivers:
		return "rivers"
	case dictionary.ObjItdAre:
		return "intertidal"
	case dictionary.ObjSbdAre:
		return "seabed"
	case dictionary.ObjObstrn, dictionary.ObjUwTroc:
		return "obstructions"
	case dictionary.ObjWrecks:
		return "wrecks"
	case dictionary.ObjCtnAre:
		return "caution_area"
	case dictionary.ObjBridge:
		return "bridges"
	case dictionary.ObjPilBop:
		return "pilot_boarding"
	case dictionary.ObjBuiSgl, dictionary.ObjBuaAre:
		return "buildings"
	case dictionary.ObjDrgAre:
		return "dredged_area"
	case dictionary.ObjResAre:
		return "restricted_area"
	case dictionary.ObjTsslPt, dictionary.ObjTsezNe, dictionary.ObjNavLne:
		return "traffic_separation"
	case dictionary.ObjCblSub, dictionary.ObjCblOhd:
		return "cables"
	case dictionary.ObjFairwy:
		return "fairway"
	default:
		return "other"
	}
}

// RenderTilePNG rasterizes every feature in a tile to a fixed-size RGBA
// PNG, using the given palette. Returns (nil, nil) for an entirely
// empty tile, per §4.8's "no all-zero tiles in the container" rule.
func RenderTilePNG(r *Reader, z, x, y int, colors rasterize.S52Colors) ([]byte, error) {
	lonMin, latMin, lonMax, latMax := TileXYZBounds(z, x, y)
	scale := ScaleForZoom(z)

	refs, err := r.GetFeaturesInBounds(scale, latMin, lonMin, latMax, lonMax)
	if err != nil {
		return nil, err
	}

	cfg := rasterize.DefaultConfig(colors)
	rz := rasterize.New(cfg, rasterize.TileBounds{MinLon: lonMin, MinLat: latMin, MaxLon: lonMax, MaxLat: latMax})

	for _, ref := range refs {
		f, err := r.ResolveFeature(ref)
		if err != nil || !passesFilters(f) {
			continue
		}
		color := rasterize.FeatureColor(f.ObjectClass, f.Attributes, colors)
		rz.RenderFeature(f.Geometry, color, cfg)
	}

	if rz.IsEmpty() {
		return nil, nil
	}
	return rz.PNG()
}
