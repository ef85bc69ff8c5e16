package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	obj := "# CM93 object class dictionary\n" +
		"; comment line\n" +
		"44,DEPARE,Depth area,7\n" +
		"147,SOUNDG,Sounding,1\n" +
		"81,LNDARE,Land area,7\n"
	attr := "# CM93 attribute dictionary\n" +
		"87,DRVAL1,F\n" +
		"172,VALSOU,F\n" +
		"116,OBJNAM,A\n"
	if err := os.WriteFile(filepath.Join(dir, "CM93OBJ.DIC"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "CM93ATTR.DIC"), []byte(attr), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	d, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	oc, ok := d.Object(44)
	if !ok || oc.Acronym != "DEPARE" {
		t.Fatalf("Object(44) = %+v, %v", oc, ok)
	}
	oc2, ok := d.ObjectByAcronym("SOUNDG")
	if !ok || oc2.Code != 147 {
		t.Fatalf("ObjectByAcronym(SOUNDG) = %+v, %v", oc2, ok)
	}

	attr, ok := d.Attribute(87)
	if !ok || attr.Acronym != "DRVAL1" || attr.Type != 'F' {
		t.Fatalf("Attribute(87) = %+v, %v", attr, ok)
	}
	attr2, ok := d.AttributeByAcronym("OBJNAM")
	if !ok || attr2.Code != 116 {
		t.Fatalf("AttributeByAcronym(OBJNAM) = %+v, %v", attr2, ok)
	}
}

func TestAcronymFallsBackToPlaceholder(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	d, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := d.Acronym(9999); got != "OBJL_9999" {
		t.Fatalf("Acronym(9999) = %q, want OBJL_9999", got)
	}
	if got := d.AttrAcronym(9999); got != "ATTR_9999" {
		t.Fatalf("AttrAcronym(9999) = %q, want ATTR_9999", got)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Fatal("Load() on empty dir: expected error, got nil")
	}
}
