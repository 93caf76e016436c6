package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for the cache and the analysis oracle.
type Metrics struct {
	cacheLookups  *prometheus.CounterVec
	oracleCalls   *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
	degraded      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callquality",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Artifact cache lookups by artifact and result (staged, stored, miss, invalid)",
		}, []string{"artifact", "result"}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callquality",
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Oracle calls by task and status",
		}, []string{"task", "status"}),
		oracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "callquality",
			Subsystem: "oracle",
			Name:      "latency_seconds",
			Help:      "Latency of oracle calls including retries",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"task"}),
		degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "callquality",
			Subsystem: "analysis",
			Name:      "degraded_total",
			Help:      "Analyses answered with the degraded fallback",
		}, []string{"artifact"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cacheLookups, m.oracleCalls, m.oracleLatency, m.degraded)
	return m
}

func (m *Metrics) ObserveCacheLookup(artifact, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(artifact, result).Inc()
}

func (m *Metrics) ObserveOracleCall(task, status string, seconds float64) {
	if m == nil {
		return
	}
	m.oracleCalls.WithLabelValues(task, status).Inc()
	m.oracleLatency.WithLabelValues(task).Observe(seconds)
}

func (m *Metrics) ObserveDegraded(artifact string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(artifact).Inc()
}
