package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/saltwatch/cm93chart/internal/boundsharvest"
	"github.com/saltwatch/cm93chart/internal/bsbcatalog"

	_ "modernc.org/sqlite"
)

// sourceExtensions are the raster source extensions the pipeline will
// convert; "bsb" is deliberately excluded — it is the text catalog
// index, not an image.
var sourceExtensions = map[string]bool{
	".kap": true, ".cap": true, ".000": true,
}

// Source is one discovered conversion candidate.
type Source struct {
	Path    string
	Stem    string // filename without extension, uppercased
	Already bool   // an MBTiles of this stem already exists in the target dir
}

// Discover walks root and returns every convertible raster file,
// flagging ones whose MBTiles output already exists in targetDir.
func Discover(root, targetDir string) ([]Source, error) {
	var sources []Source
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !sourceExtensions[ext] {
			return nil
		}
		stem := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		outPath := filepath.Join(targetDir, stem+".mbtiles")
		_, statErr := os.Stat(outPath)
		sources = append(sources, Source{Path: path, Stem: stem, Already: statErr == nil})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: scanning %s: %w", root, err)
	}
	return sources, nil
}

// workerCount returns n unchanged when it is positive; otherwise it
// defaults to half the CPU count, clamped to [2,4].
func workerCount(n int) int {
	if n > 0 {
		return n
	}
	n = runtime.NumCPU() / 2
	if n < 2 {
		return 2
	}
	if n > 4 {
		return 4
	}
	return n
}

// Progress reports the pipeline's running totals. A Progress value is
// emitted after every file, successful or not.
type Progress struct {
	Phase       string
	Current     int
	Total       int
	CurrentFile string
	Completed   int32
	Converted   int32
	Skipped     int32
	Failed      int32
}

// Result is the pipeline's final tally, matching the consumer
// contract's import_folder return shape.
type Result struct {
	Converted int      `json:"converted"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// Pipeline converts a directory of raster chart sources into MBTiles,
// patching in BSB catalog metadata where available.
type Pipeline struct {
	Converter  *Converter
	TargetDir  string
	Workers    int
	BSBCatalog *bsbcatalog.Catalog // nil if no .bsb catalog was found
	OnProgress func(Progress)
}

// Run discovers sources under root and converts them with a bounded
// worker pool. A single file's failure is logged and counted; it never
// aborts the overall run.
func (p *Pipeline) Run(ctx context.Context, root string) (Result, error) {
	sources, err := Discover(root, p.TargetDir)
	if err != nil {
		return Result{}, err
	}

	n := workerCount(p.Workers)
	jobs := make(chan Source)

	var completed, converted, skipped, failed int32
	var mu sync.Mutex
	var errs []string

	// g never sees a worker error: convertOne records failures into
	// errs/failed itself so one bad chart never cancels the others.
	// Converter calls get a context that is not cancelled with ctx, so
	// cancelling never kills a running external process; ctx is checked
	// instead before each further source is handed to a worker.
	convertCtx := context.WithoutCancel(ctx)
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < n; w++ {
		g.Go(func() error {
			for src := range jobs {
				p.convertOne(convertCtx, src, &converted, &skipped, &failed, &mu, &errs)
				cur := atomic.AddInt32(&completed, 1)
				if p.OnProgress != nil {
					p.OnProgress(Progress{
						Phase:       "convert",
						Current:     int(cur),
						Total:       len(sources),
						CurrentFile: src.Path,
						Completed:   cur,
						Converted:   atomic.LoadInt32(&converted),
						Skipped:     atomic.LoadInt32(&skipped),
						Failed:      atomic.LoadInt32(&failed),
					})
				}
			}
			return nil
		})
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		jobs <- src
	}
	close(jobs)
	_ = g.Wait()

	return Result{
		Converted: int(converted),
		Skipped:   int(skipped),
		Failed:    int(failed),
		Errors:    errs,
	}, nil
}

func (p *Pipeline) convertOne(ctx context.Context, src Source, converted, skipped, failed *int32, mu *sync.Mutex, errs *[]string) {
	if src.Already {
		atomic.AddInt32(skipped, 1)
		return
	}

	outPath := filepath.Join(p.TargetDir, src.Stem+".mbtiles")

	infoJSON, err := p.Converter.Info(ctx, src.Path)
	var bounds boundsharvest.Bounds
	if err == nil {
		if b, berr := boundsharvest.FromGdalInfoJSON(infoJSON); berr == nil {
			bounds = b
		}
	}

	if err := p.Converter.ConvertToMBTiles(ctx, src.Path, outPath); err != nil {
		log.Printf("ingest: conversion failed for %s: %v", src.Path, err)
		recordErr(mu, errs, err.Error())
		atomic.AddInt32(failed, 1)
		return
	}

	if err := p.patchMetadata(outPath, src, bounds); err != nil {
		log.Printf("ingest: metadata patch failed for %s: %v", outPath, err)
	}

	atomic.AddInt32(converted, 1)
}

func recordErr(mu *sync.Mutex, errs *[]string, msg string) {
	mu.Lock()
	*errs = append(*errs, msg)
	mu.Unlock()
}

// patchMetadata opens the freshly written MBTiles and overwrites its
// name/description if the source's stem matches a BSB catalog entry.
func (p *Pipeline) patchMetadata(mbtilesPath string, src Source, bounds boundsharvest.Bounds) error {
	db, err := sql.Open("sqlite", mbtilesPath)
	if err != nil {
		return err
	}
	defer db.Close()

	boundsStr := fmt.Sprintf("%f,%f,%f,%f", bounds[0], bounds[1], bounds[2], bounds[3])
	if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, "bounds", boundsStr); err != nil {
		return err
	}

	if p.BSBCatalog == nil {
		return nil
	}
	entry, ok := p.BSBCatalog.ByChartID(src.Stem)
	if !ok {
		return nil
	}

	name := entry.Title
	if strings.EqualFold(entry.Type, "Inset") {
		name += " (Inset)"
	}
	if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, "name", name); err != nil {
		return err
	}
	if p.BSBCatalog.EditionDate != "" {
		desc := "Edition: " + p.BSBCatalog.EditionDate
		if _, err := db.Exec(`INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?)`, "description", desc); err != nil {
			return err
		}
	}
	return nil
}
