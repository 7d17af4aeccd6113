// Package metrics exports fleet measurements to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profleet/internal/fleet"
)

// Collector implements fleet.Recorder on a private Prometheus registry.
type Collector struct {
	// Fleet gauges from the last reconcile
	profiles *prometheus.GaugeVec

	// Reconcile latency
	reconcileDuration prometheus.Histogram

	// Launch and terminate outcomes
	spawns       *prometheus.CounterVec
	terminations *prometheus.CounterVec

	registry *prometheus.Registry
}

var _ fleet.Recorder = (*Collector)(nil)

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "profleet"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
	}

	c.profiles = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profiles",
			Help:      "Profiles by state as of the last reconcile",
		},
		[]string{"state"},
	)

	c.reconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of fleet reconcile operations",
			Buckets:   prometheus.DefBuckets,
		},
	)

	c.spawns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawn_attempts_total",
			Help:      "Total number of process spawn attempts",
		},
		[]string{"phase", "status"},
	)

	c.terminations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminations_total",
			Help:      "Total number of process kill attempts",
		},
		[]string{"status"},
	)

	c.registry.MustRegister(
		c.profiles,
		c.reconcileDuration,
		c.spawns,
		c.terminations,
	)
	return c
}

// FleetObserved publishes the counts of one reconcile.
func (c *Collector) FleetObserved(summary fleet.Summary, took time.Duration) {
	c.profiles.WithLabelValues("total").Set(float64(summary.Total))
	c.profiles.WithLabelValues("running").Set(float64(summary.Running))
	c.profiles.WithLabelValues("disabled").Set(float64(summary.Disabled))
	c.profiles.WithLabelValues("unknown").Set(float64(summary.Unknown))
	c.reconcileDuration.Observe(took.Seconds())
}

// SpawnAttempt counts one spawn in phase "primary" or "link".
func (c *Collector) SpawnAttempt(phase string, err error) {
	c.spawns.WithLabelValues(phase, status(err)).Inc()
}

// ProcessTerminated counts one kill attempt.
func (c *Collector) ProcessTerminated(err error) {
	c.terminations.WithLabelValues(status(err)).Inc()
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
