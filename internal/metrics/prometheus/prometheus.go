// Package prometheus exports ledger metrics with client_golang.
package prometheus

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fintrack/internal/metrics"
)

// Collector implements metrics.Collector.
type Collector struct {
	mutations      *prometheus.CounterVec
	loads          *prometheus.CounterVec
	persists       *prometheus.CounterVec
	persistLatency *prometheus.HistogramVec
	circuitState   prometheus.Gauge
	circuitOpens   prometheus.Counter
	reportCache    *prometheus.CounterVec
}

var _ metrics.Collector = (*Collector)(nil)

// NewCollector creates the metric vectors under namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_mutations_total",
				Help:      "Store mutations per operation and status",
			},
			[]string{"operation", "status"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_loads_total",
				Help:      "Collection loads per key and outcome",
			},
			[]string{"key", "outcome"},
		),
		persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_saves_total",
				Help:      "Collection saves per key and status",
			},
			[]string{"key", "status"},
		),
		persistLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_save_duration_seconds",
				Help:      "Collection save latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to ~3s
			},
			[]string{"key"},
		),
		circuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "storage_circuit_state",
				Help:      "Persistence breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
		circuitOpens: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_circuit_opens_total",
				Help:      "Times the persistence breaker opened",
			},
		),
		reportCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_requests_total",
				Help:      "Dashboard cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

// Register adds every metric to registry.
func (c *Collector) Register(registry *prometheus.Registry) error {
	for _, col := range []prometheus.Collector{
		c.mutations, c.loads, c.persists, c.persistLatency,
		c.circuitState, c.circuitOpens, c.reportCache,
	} {
		if err := registry.Register(col); err != nil {
			return fmt.Errorf("register metric: %w", err)
		}
	}
	return nil
}

func (c *Collector) RecordMutation(op string, success bool) {
	c.mutations.WithLabelValues(op, status(success)).Inc()
}

func (c *Collector) RecordLoad(key, outcome string) {
	c.loads.WithLabelValues(key, outcome).Inc()
}

func (c *Collector) RecordPersist(key string, success bool, duration time.Duration) {
	c.persists.WithLabelValues(key, status(success)).Inc()
	c.persistLatency.WithLabelValues(key).Observe(duration.Seconds())
}

func (c *Collector) RecordCircuitState(state metrics.CircuitState) {
	c.circuitState.Set(float64(state))
	if state == metrics.CircuitOpen {
		c.circuitOpens.Inc()
	}
}

func (c *Collector) RecordReportCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.reportCache.WithLabelValues(result).Inc()
}

// WriteTextfile dumps registry in the text exposition format, for pickup by
// node_exporter's textfile collector.
func WriteTextfile(registry *prometheus.Registry, path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
