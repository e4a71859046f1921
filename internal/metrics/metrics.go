// Package metrics exposes run counters in the Prometheus format.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the metrics of one process. It owns its registry so runs
// in tests do not collide on the global one.
type Collector struct {
	registry       *prometheus.Registry
	pages          *prometheus.CounterVec
	entities       *prometheus.CounterVec
	relatedLookups *prometheus.CounterVec
	nodeDuration   prometheus.Histogram
	lastRun        prometheus.Gauge
}

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "h2c_pages_total",
				Help: "Page-tree nodes processed, by outcome",
			},
			[]string{"outcome"},
		),
		entities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "h2c_entities_total",
				Help: "Inventory entities synced, by tree variant",
			},
			[]string{"variant"},
		),
		relatedLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "h2c_related_lookups_total",
				Help: "Related-page lookups, by result",
			},
			[]string{"result"},
		),
		nodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "h2c_node_sync_seconds",
			Help:    "Time spent rendering and syncing one page-tree node",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "h2c_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	c.registry.MustRegister(c.pages, c.entities, c.relatedLookups, c.nodeDuration, c.lastRun)
	return c
}

// Hooks returns synchronizer hooks feeding the page and duration metrics.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			if e.Result != nil {
				c.pages.WithLabelValues(string(e.Result.Outcome)).Inc()
			}
			c.nodeDuration.Observe(e.Duration.Seconds())
		},
	}
}

// ObserveEntity counts one synced entity.
func (c *Collector) ObserveEntity(identifier, variant string) {
	c.entities.WithLabelValues(variant).Inc()
}

// ObserveRelatedLookup counts one related-page lookup.
func (c *Collector) ObserveRelatedLookup(result string) {
	c.relatedLookups.WithLabelValues(result).Inc()
}

// MarkRunFinished sets the last-run gauge to now.
func (c *Collector) MarkRunFinished() {
	c.lastRun.SetToCurrentTime()
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
