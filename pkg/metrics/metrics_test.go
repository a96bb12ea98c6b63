package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue ищет значение счетчика в реестре по имени метрики
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetrics_DomainCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg, "test")

	m.IncBookingTransition("private", "approved")
	m.IncBookingTransition("private", "approved")
	m.IncAllocationConflict()
	m.AddOverstayFee(40)
	m.AddOverstayFee(0)

	assert.Equal(t, 2.0, counterValue(t, reg, "booking_transitions_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "allocation_conflicts_total"))
	assert.Equal(t, 40.0, counterValue(t, reg, "overstay_fees_total"))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBookingTransition("commercial", "pending")
		m.IncAllocationConflict()
		m.AddOverstayFee(20)
		m.ObserveHTTPRequest("GET", "/api/v1/facilities", 200, time.Millisecond)
		m.ObserveDBQuery("query", time.Millisecond, nil)
	})
}
