package distances

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by an Engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	OpenIndices     prometheus.Gauge
	Queries         *prometheus.CounterVec
	RejectedQueries prometheus.Counter
	QueryDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		OpenIndices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "distances_open_indices",
			Help: "Number of spatial indices currently open",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "distances_queries_total",
			Help: "Total number of query points processed by operation",
		}, []string{"op"}),
		RejectedQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "distances_rejected_queries_total",
			Help: "Radius queries that found fewer than k neighbors",
		}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "distances_query_duration_seconds",
			Help:    "Duration of query batches by operation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{m.OpenIndices, m.Queries, m.RejectedQueries, m.QueryDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) setOpen(n int) {
	if m == nil {
		return
	}
	m.OpenIndices.Set(float64(n))
}

func (m *Metrics) observe(op string, queries, rejected int, start time.Time) {
	if m == nil {
		return
	}
	m.Queries.WithLabelValues(op).Add(float64(queries))
	if rejected > 0 {
		m.RejectedQueries.Add(float64(rejected))
	}
	m.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
