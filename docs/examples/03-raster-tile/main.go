package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/saltwatch/cm93chart/pkg/cm93"
	"github.com/saltwatch/cm93chart/pkg/rasterize"
)

func main() {
	db, err := cm93.OpenDatabase("testdata/chart", "CM93OBJ.DIC", "CM93ATTR.DIC")
	if err != nil {
		log.Fatal(err)
	}
	reader := cm93.Open(db, 500)

	const z, x, y = 10, 163, 395

	fc, err := cm93.TileGeoJSON(reader, z, x, y)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("tile %d/%d/%d: %d features\n", z, x, y, len(fc.Features))

	png, err := cm93.RenderTilePNG(reader, z, x, y, rasterize.DayColors())
	if err != nil {
		log.Fatal(err)
	}
	if len(png) > 0 {
		if err := os.WriteFile("tile.png", png, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote tile.png (%d bytes)\n", len(png))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(fc)
}
