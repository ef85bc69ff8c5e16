package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/saltwatch/cm93chart/internal/charterrors"
)

func TestToolPathUsesBareNameWithoutSDK(t *testing.T) {
	c := NewConverter("")
	if got := c.toolPath("gdal_translate"); got != "gdal_translate" {
		t.Fatalf("toolPath() = %q, want bare name", got)
	}
}

func TestToolPathPrefersBundledWhenPresent(t *testing.T) {
	sdkRoot := t.TempDir()
	appsDir := filepath.Join(sdkRoot, "bin", "gdal", "apps")
	if err := os.MkdirAll(appsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	bundled := filepath.Join(appsDir, "gdal_translate")
	if err := os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	c := NewConverter(sdkRoot)
	if got := c.toolPath("gdal_translate"); got != bundled {
		t.Fatalf("toolPath() = %q, want bundled path %q", got, bundled)
	}
}

func TestToolPathFallsBackToBareNameWhenBundledMissing(t *testing.T) {
	sdkRoot := t.TempDir()
	c := NewConverter(sdkRoot)
	if got := c.toolPath("gdalwarp"); got != "gdalwarp" {
		t.Fatalf("toolPath() = %q, want bare name fallback", got)
	}
}

func TestBundledEnvEmptyWithoutSDKRoot(t *testing.T) {
	c := NewConverter("")
	if env := c.bundledEnv(); env != nil {
		t.Fatalf("bundledEnv() = %v, want nil", env)
	}
}

func TestBundledEnvSetsGdalAndProjVars(t *testing.T) {
	sdkRoot := "/opt/chartsdk"
	c := NewConverter(sdkRoot)
	env := c.bundledEnv()

	want := map[string]bool{
		"GDAL_DATA=" + filepath.Join(sdkRoot, "bin", "gdal-data"):             true,
		"GDAL_DRIVER_PATH=" + filepath.Join(sdkRoot, "bin", "gdal", "plugins"): true,
		"PROJ_LIB=" + filepath.Join(sdkRoot, "bin", "proj9", "share"):          true,
	}
	if len(env) != len(want) {
		t.Fatalf("bundledEnv() returned %d entries, want %d", len(env), len(want))
	}
	for _, e := range env {
		if !want[e] {
			t.Fatalf("bundledEnv() contained unexpected entry %q", e)
		}
	}
}

func TestAvailableReportsConverterUnavailableWhenToolMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	c := NewConverter("")
	if err := c.Available(context.Background()); err == nil {
		t.Fatal("expected error when gdal_translate cannot be found on a clean PATH/SDK root")
	}
}

func TestConvertToMBTilesRejectsUnsupportedExtension(t *testing.T) {
	c := NewConverter("")
	err := c.ConvertToMBTiles(context.Background(), "chart.tif", filepath.Join(t.TempDir(), "out.mbtiles"))
	if err == nil {
		t.Fatal("expected UnsupportedFormat error for .tif input")
	}
	if _, ok := err.(*charterrors.UnsupportedFormat); !ok {
		t.Fatalf("error type = %T, want *charterrors.UnsupportedFormat", err)
	}
}
