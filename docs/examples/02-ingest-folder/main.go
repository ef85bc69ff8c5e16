package main

import (
	"fmt"
	"log"

	"github.com/saltwatch/cm93chart/pkg/cm93"
	"github.com/saltwatch/cm93chart/pkg/mbtiles"
	"github.com/saltwatch/cm93chart/pkg/rasterize"
)

// Walks a zoom/x/y range over an open CM93 database and bakes the
// rendered tiles into a single MBTiles container, the same shape the
// raster converter's output is patched into.
func main() {
	db, err := cm93.OpenDatabase("testdata/chart", "CM93OBJ.DIC", "CM93ATTR.DIC")
	if err != nil {
		log.Fatal(err)
	}
	reader := cm93.Open(db, 500)

	w, err := mbtiles.Open("out/region.mbtiles")
	if err != nil {
		log.Fatal(err)
	}
	defer w.Close()

	if err := w.WriteMetadata(mbtiles.Metadata{
		Name:   "region",
		Format: "png",
	}); err != nil {
		log.Fatal(err)
	}

	colors := rasterize.DayColors()
	const zoom = 12
	written := 0
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			png, err := cm93.RenderTilePNG(reader, zoom, x, y, colors)
			if err != nil || len(png) == 0 {
				continue
			}
			if err := w.PutTile(zoom, x, y, png); err != nil {
				log.Fatal(err)
			}
			written++
		}
	}

	fmt.Printf("wrote %d tiles at zoom %d\n", written, zoom)
}
