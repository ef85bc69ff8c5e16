package cm93

import (
	"testing"
)

func TestOpenDatabaseMissingDictReturnsError(t *testing.T) {
	root := t.TempDir()
	if _, err := OpenDatabase(root, "CM93OBJ.DIC", "CM93ATTR.DIC"); err == nil {
		t.Fatal("expected error for missing dictionary files, got nil")
	}
}

func TestOpenDatabaseScansCellsAcrossScales(t *testing.T) {
	root := t.TempDir()
	writeDictionaries(t, root)
	writeCellFile(t, root, "CHART1", ScaleC, "00000001", 81, [4]float64{10, 50, 11, 51})
	writeCellFile(t, root, "CHART1", ScaleD, "1A", 44, [4]float64{10, 50, 10.5, 50.5})

	db, err := OpenDatabase(root, "CM93OBJ.DIC", "CM93ATTR.DIC")
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}

	cCells := db.ListCells(ScaleC)
	if len(cCells) != 1 || cCells[0] != 1 {
		t.Fatalf("ListCells(C) = %v, want [1]", cCells)
	}

	dCells := db.ListCells(ScaleD)
	if len(dCells) != 1 || dCells[0] != 0x1A {
		t.Fatalf("ListCells(D) = %v, want [%d] (hex-parsed stem)", dCells, 0x1A)
	}

	scales := db.AvailableScales()
	if len(scales) != 2 {
		t.Fatalf("AvailableScales() = %v, want 2 entries", scales)
	}
}

func TestCellPathLookup(t *testing.T) {
	root := t.TempDir()
	writeDictionaries(t, root)
	writeCellFile(t, root, "CHART1", ScaleC, "00000001", 81, [4]float64{10, 50, 11, 51})

	db, err := OpenDatabase(root, "CM93OBJ.DIC", "CM93ATTR.DIC")
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	if _, ok := db.CellPath(ScaleC, 1); !ok {
		t.Fatal("CellPath(C, 1) not found")
	}
	if _, ok := db.CellPath(ScaleC, 999); ok {
		t.Fatal("CellPath(C, 999) unexpectedly found")
	}
}
