package main

import (
	"fmt"
	"log"

	"github.com/saltwatch/cm93chart/pkg/cm93"
)

func main() {
	db, err := cm93.OpenDatabase("testdata/chart", "CM93OBJ.DIC", "CM93ATTR.DIC")
	if err != nil {
		log.Fatal(err)
	}

	reader := cm93.Open(db, 500)
	stats := reader.Stats()

	fmt.Printf("Scales: %v\n", reader.AvailableScales())
	fmt.Printf("Cells: %d\n", stats.TotalCells)
	for scale, n := range stats.CellsByScale {
		fmt.Printf("  %s: %d cells\n", scale, n)
	}
}
