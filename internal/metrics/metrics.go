package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"serpwatch/internal/db"
)

var (
	keywordTargetsDesc = prometheus.NewDesc(
		"serpwatch_keyword_targets_total",
		"Tracked keyword targets by project",
		[]string{"project"},
		nil,
	)
	snapshotsDesc = prometheus.NewDesc(
		"serpwatch_snapshots_total",
		"Stored SERP snapshots by project",
		[]string{"project"},
		nil,
	)

	computations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serpwatch_computations_total",
			Help: "Volatility computations by endpoint",
		},
		[]string{"endpoint"},
	)
	computationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "serpwatch_computation_duration_seconds",
			Help:    "Duration of one compute-on-read aggregation pass",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// InventoryCollector is a custom Prometheus collector that reads keyword and
// snapshot counts from the database on each scrape.
type InventoryCollector struct {
	db *db.DB
}

// Describe sends the metric descriptors to the channel.
func (c *InventoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordTargetsDesc
	ch <- snapshotsDesc
}

// Collect queries the database for per-project totals and emits them as gauges.
func (c *InventoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()

	targets, err := c.db.CountKeywordTargetsByProject(ctx)
	if err != nil {
		slog.Error("failed to collect keyword target metrics", "error", err)
		return
	}
	for slug, count := range targets {
		ch <- prometheus.MustNewConstMetric(keywordTargetsDesc, prometheus.GaugeValue, float64(count), slug)
	}

	snaps, err := c.db.CountSnapshotsByProject(ctx)
	if err != nil {
		slog.Error("failed to collect snapshot metrics", "error", err)
		return
	}
	for slug, count := range snaps {
		ch <- prometheus.MustNewConstMetric(snapshotsDesc, prometheus.GaugeValue, float64(count), slug)
	}
}

var initOnce sync.Once

// Init registers the custom collector and the engine instrumentation.
// Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&InventoryCollector{db: database})
		prometheus.MustRegister(computations, computationDuration)
	})
}

// ObserveComputation records one aggregation pass for an engine endpoint.
func ObserveComputation(endpoint string, start time.Time) {
	computations.WithLabelValues(endpoint).Inc()
	computationDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
