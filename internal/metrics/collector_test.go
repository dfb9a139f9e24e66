package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/mellowdrifter/dcerpc/internal/metrics"
)

func TestNewCollector(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	if c.CallsSent == nil {
		t.Error("CallsSent is nil")
	}
	if c.CallsCompleted == nil {
		t.Error("CallsCompleted is nil")
	}
	if c.CallsFailed == nil {
		t.Error("CallsFailed is nil")
	}
	if c.CallLatency == nil {
		t.Error("CallLatency is nil")
	}
	if c.Suspensions == nil {
		t.Error("Suspensions is nil")
	}

	if _, err := reg.Gather(); err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
}

func TestCallSentAndCompleted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.CallSent(7)
	c.CallSent(7)
	c.CallCompleted(7, 0.025)

	if got := counterValue(t, c.CallsSent, "7"); got != 2 {
		t.Errorf("CallsSent(7) = %v, want 2", got)
	}
	if got := counterValue(t, c.CallsCompleted, "7"); got != 1 {
		t.Errorf("CallsCompleted(7) = %v, want 1", got)
	}
}

func TestCallFailed(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.CallFailed(3)
	c.CallFailed(3)
	c.CallFailed(4)

	if got := counterValue(t, c.CallsFailed, "3"); got != 2 {
		t.Errorf("CallsFailed(3) = %v, want 2", got)
	}
	if got := counterValue(t, c.CallsFailed, "4"); got != 1 {
		t.Errorf("CallsFailed(4) = %v, want 1", got)
	}
}

func TestSuspensionsOutstanding(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.SuspensionsOutstanding(1)
	c.SuspensionsOutstanding(1)
	c.SuspensionsOutstanding(-1)

	m := &dto.Metric{}
	if err := c.Suspensions.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 1 {
		t.Errorf("Suspensions = %v, want 1", got)
	}
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()

	counter, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%v): %v", labels, err)
	}

	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		t.Fatalf("Write metric: %v", err)
	}

	return m.GetCounter().GetValue()
}
