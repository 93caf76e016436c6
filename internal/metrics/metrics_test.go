package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveCacheLookup("transcription", "miss")
	m.ObserveCacheLookup("transcription", "miss")
	m.ObserveOracleCall("analysis", "ok", 1.2)
	m.ObserveDegraded("analysis")

	assert.Equal(t, 2.0, counterValue(t, reg, "callquality_cache_lookups_total",
		map[string]string{"artifact": "transcription", "result": "miss"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "callquality_oracle_calls_total",
		map[string]string{"task": "analysis", "status": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "callquality_analysis_degraded_total",
		map[string]string{"artifact": "analysis"}))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveCacheLookup("a", "b")
	m.ObserveOracleCall("t", "s", 0.1)
	m.ObserveDegraded("a")
}
