// Package boundsharvest extracts a raster source's geographic envelope
// from the JSON output of an external "info" tool (gdalinfo -json),
// by reading its wgs84Extent.coordinates polygon.
package boundsharvest

import (
	"encoding/json"
	"fmt"
	"math"
)

type gdalInfo struct {
	Wgs84Extent struct {
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"wgs84Extent"`
}

// Bounds is a geographic envelope: minLon, minLat, maxLon, maxLat.
type Bounds [4]float64

// FromGdalInfoJSON parses gdalinfo's -json output and returns the
// min/max envelope of its wgs84Extent ring, discarding any vertex
// outside the valid longitude/latitude range.
func FromGdalInfoJSON(data []byte) (Bounds, error) {
	var info gdalInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return Bounds{}, fmt.Errorf("boundsharvest: parsing gdalinfo JSON: %w", err)
	}
	if len(info.Wgs84Extent.Coordinates) == 0 {
		return Bounds{}, fmt.Errorf("boundsharvest: no wgs84Extent in gdalinfo output")
	}

	// coordinates is a GeoJSON Polygon ring: [[[lon,lat], ...]].
	var rings [][][2]float64
	if err := json.Unmarshal(info.Wgs84Extent.Coordinates, &rings); err != nil {
		return Bounds{}, fmt.Errorf("boundsharvest: parsing coordinates ring: %w", err)
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	found := false

	for _, ring := range rings {
		for _, pt := range ring {
			lon, lat := pt[0], pt[1]
			if math.Abs(lon) > 180.0 || math.Abs(lat) > 90.0 {
				continue
			}
			found = true
			if lon < minLon {
				minLon = lon
			}
			if lon > maxLon {
				maxLon = lon
			}
			if lat < minLat {
				minLat = lat
			}
			if lat > maxLat {
				maxLat = lat
			}
		}
	}

	if !found {
		return Bounds{}, fmt.Errorf("boundsharvest: no valid coordinate pairs in wgs84Extent")
	}
	return Bounds{minLon, minLat, maxLon, maxLat}, nil
}
