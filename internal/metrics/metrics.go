// Package metrics exposes the chart engine's running state as
// Prometheus gauges: Reader cache size and cell count, and ingest
// pipeline progress, following the qrank webserver's GaugeFunc style.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/saltwatch/cm93chart/pkg/cm93"
)

const namespace = "cm93chart"

// RegisterReaderStats installs two GaugeFuncs reporting the cell
// cache's size and the database's total cell count, sampled on every
// /metrics scrape. No cache hit rate is recorded.
func RegisterReaderStats(r *cm93.Reader) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reader_cached_cells",
			Help:      "Number of CM93 cells currently held in the reader's cell cache.",
		},
		func() float64 { return float64(r.CacheSize()) },
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reader_total_cells",
			Help:      "Number of CM93 cells known to the opened database, across all scales.",
		},
		func() float64 { return float64(r.Stats().TotalCells) },
	))
}

// IngestGauges tracks one ingest run's running totals, updated from
// the pipeline's progress callback and scraped as plain gauges.
type IngestGauges struct {
	current   prometheus.Gauge
	total     prometheus.Gauge
	converted prometheus.Gauge
	skipped   prometheus.Gauge
	failed    prometheus.Gauge
}

// NewIngestGauges registers and returns the ingest progress gauge
// family.
func NewIngestGauges() *IngestGauges {
	g := &IngestGauges{
		current:   gauge("ingest_current", "Index of the file currently being processed by the running ingest pass."),
		total:     gauge("ingest_total", "Total number of discovered sources in the running ingest pass."),
		converted: gauge("ingest_converted", "Number of sources converted so far in the running ingest pass."),
		skipped:   gauge("ingest_skipped", "Number of sources skipped so far in the running ingest pass."),
		failed:    gauge("ingest_failed", "Number of sources that failed conversion so far in the running ingest pass."),
	}
	prometheus.MustRegister(g.current, g.total, g.converted, g.skipped, g.failed)
	return g
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// Observe updates the gauge family from an ingest.Progress snapshot.
// Takes the snapshot's fields as plain ints so internal/metrics never
// needs to import internal/ingest.
func (g *IngestGauges) Observe(current, total, converted, skipped, failed int) {
	g.current.Set(float64(current))
	g.total.Set(float64(total))
	g.converted.Set(float64(converted))
	g.skipped.Set(float64(skipped))
	g.failed.Set(float64(failed))
}
