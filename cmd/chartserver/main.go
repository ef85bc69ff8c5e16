package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saltwatch/cm93chart/internal/config"
	"github.com/saltwatch/cm93chart/internal/httpapi"
	"github.com/saltwatch/cm93chart/internal/ingest"
	"github.com/saltwatch/cm93chart/internal/metrics"
	"github.com/saltwatch/cm93chart/pkg/cm93"
	"github.com/saltwatch/cm93chart/pkg/rasterize"
)

func main() {
	cfg := config.Load()

	db, err := cm93.OpenDatabase(cfg.CM93Root, cfg.DictObjFile, cfg.DictAttrFile)
	if err != nil {
		log.Fatalf("chartserver: opening CM93 database at %s: %v", cfg.CM93Root, err)
	}
	reader := cm93.Open(db, cfg.CacheCapacity)
	metrics.RegisterReaderStats(reader)

	converter := ingest.NewConverter(cfg.ConverterSDKRoot)

	handler := &httpapi.Handler{
		Reader:        reader,
		Converter:     converter,
		TargetDir:     cfg.IngestTargetDir,
		DayColors:     rasterize.DayColors(),
		NightColor:    rasterize.NightColors(),
		Palette:       cfg.Palette,
		IngestWorkers: cfg.IngestWorkers,
		IngestGauges:  metrics.NewIngestGauges(),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler.Register(e)

	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		log.Printf("chartserver: metrics listening on %s", cfg.MetricsBindAddr)
		if err := http.ListenAndServe(cfg.MetricsBindAddr, metricsMux); err != nil {
			log.Printf("chartserver: metrics server exited: %v", err)
		}
	}()

	fmt.Printf("chartserver: serving CM93 root %s on %s\n", cfg.CM93Root, cfg.HTTPBindAddr)
	e.Logger.Fatal(e.Start(cfg.HTTPBindAddr))
}
