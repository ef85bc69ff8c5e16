package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverFindsConvertibleExtensions(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	for _, name := range []string{"12221.kap", "12221.bsb", "readme.txt", "US5NY1AM.000"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sources, err := Discover(root, target)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Discover() found %d sources, want 2 (kap, 000); got %+v", len(sources), sources)
	}
}

func TestDiscoverFlagsAlreadyConvertedSources(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, "12221.kap"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "12221.mbtiles"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := Discover(root, target)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(sources) != 1 || !sources[0].Already {
		t.Fatalf("Discover() = %+v, want single source flagged Already=true", sources)
	}
}

func TestWorkerCountClampsToRange(t *testing.T) {
	cases := []struct {
		in, wantMin, wantMax int
	}{
		{8, 8, 8},
		{0, 2, 4},
		{1, 2, 4},
	}
	for _, c := range cases {
		got := workerCount(c.in)
		if got < c.wantMin || got > c.wantMax {
			t.Fatalf("workerCount(%d) = %d, want in [%d,%d]", c.in, got, c.wantMin, c.wantMax)
		}
	}
}

func TestPipelineRunSkipsAlreadyConverted(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	if err := os.WriteFile(filepath.Join(root, "12221.kap"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "12221.mbtiles"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &Pipeline{
		Converter: NewConverter(""),
		TargetDir: target,
		Workers:   2,
	}
	result, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Skipped != 1 || result.Converted != 0 || result.Failed != 0 {
		t.Fatalf("Run() = %+v, want 1 skipped, 0 converted, 0 failed", result)
	}
}
