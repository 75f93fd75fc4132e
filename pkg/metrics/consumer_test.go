package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestConsumerMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConsumerMetrics(reg)

	m.IncProcessed("grade.posted")
	m.IncProcessed("grade.posted")
	m.IncFailed("absence.recorded")
	m.IncDuplicate("")
	m.ObserveDuration("grade.posted", 250*time.Millisecond)

	if got := testutil.ToFloat64(m.processed.WithLabelValues("grade.posted")); got != 2 {
		t.Fatalf("expected 2 processed, got %v", got)
	}
	if got := testutil.ToFloat64(m.failed.WithLabelValues("absence.recorded")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.duplicate.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected duplicate recorded under unknown, got %v", got)
	}
}

func TestConsumerMetricsNilSafe(t *testing.T) {
	var m *ConsumerMetrics
	m.IncProcessed("x")
	m.IncFailed("x")
	m.IncDuplicate("x")
	m.ObserveDuration("x", time.Second)
}
