// Package ingest discovers raster chart sources, converts each to
// Web-Mercator MBTiles via an external GDAL-family toolchain, and
// patches the result with BSB catalog metadata.
package ingest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/saltwatch/cm93chart/internal/charterrors"
)

// Converter locates and invokes the external gdal_translate/gdalwarp/
// gdaladdo/gdalinfo toolchain, preferring a bundled SDK root over PATH.
type Converter struct {
	sdkRoot string // empty means "not bundled, use PATH"
}

// NewConverter builds a Converter. sdkRoot may be empty.
func NewConverter(sdkRoot string) *Converter {
	return &Converter{sdkRoot: sdkRoot}
}

func (c *Converter) toolPath(name string) string {
	if c.sdkRoot == "" {
		return name
	}
	candidate := filepath.Join(c.sdkRoot, "bin", "gdal", "apps", name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return name
}

func (c *Converter) bundledEnv() []string {
	if c.sdkRoot == "" {
		return nil
	}
	return []string{
		"GDAL_DATA=" + filepath.Join(c.sdkRoot, "bin", "gdal-data"),
		"GDAL_DRIVER_PATH=" + filepath.Join(c.sdkRoot, "bin", "gdal", "plugins"),
		"PROJ_LIB=" + filepath.Join(c.sdkRoot, "bin", "proj9", "share"),
	}
}

// run executes one GDAL tool and returns its stdout, wrapping failures
// in a typed ConverterFailed error.
func (c *Converter) run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	path := c.toolPath(tool)
	cmd := exec.CommandContext(ctx, path, args...)
	if env := c.bundledEnv(); env != nil {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = string(ee.Stderr)
		} else {
			stderr = err.Error()
		}
		return nil, &charterrors.ConverterFailed{Tool: tool, Path: strings.Join(args, " "), Stderr: stderr}
	}
	return out, nil
}

// Available reports whether gdal_translate can be invoked, bundled or
// on PATH, and returns a ConverterUnavailable error if not.
func (c *Converter) Available(ctx context.Context) error {
	if _, err := c.run(ctx, "gdal_translate", "--version"); err != nil {
		return &charterrors.ConverterUnavailable{Tool: "gdal_translate"}
	}
	return nil
}

// Info runs gdalinfo -json on a source raster and returns its raw
// stdout for boundsharvest to parse.
func (c *Converter) Info(ctx context.Context, inputPath string) ([]byte, error) {
	return c.run(ctx, "gdalinfo", "-json", inputPath)
}

// ConvertToMBTiles runs the four-step conversion chain described for
// BSB/KAP and S-57 rasters: palette expand, reproject, MBTiles build,
// overview generation. outputPath must not already exist.
func (c *Converter) ConvertToMBTiles(ctx context.Context, inputPath, outputPath string) error {
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !sourceExtensions[ext] {
		return &charterrors.UnsupportedFormat{Path: inputPath, Ext: ext}
	}

	workDir, err := os.MkdirTemp("", "cm93chart-ingest-*")
	if err != nil {
		return fmt.Errorf("ingest: creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	rgba := filepath.Join(workDir, "expanded.tif")
	if _, err := c.run(ctx, "gdal_translate", "-expand", "rgba", inputPath, rgba); err != nil {
		return err
	}

	reprojected := filepath.Join(workDir, "reprojected.tif")
	if _, err := c.run(ctx, "gdalwarp",
		"-t_srs", "EPSG:3857", "-r", "cubic", "-multi", "-wo", "NUM_THREADS=ALL_CPUS",
		rgba, reprojected,
	); err != nil {
		return err
	}

	if _, err := c.run(ctx, "gdal_translate",
		"-of", "MBTiles", "-co", "TILE_FORMAT=PNG",
		reprojected, outputPath,
	); err != nil {
		return err
	}

	if _, err := c.run(ctx, "gdaladdo", "-r", "nearest", outputPath, "2", "4", "8", "16"); err != nil {
		return err
	}

	return nil
}
