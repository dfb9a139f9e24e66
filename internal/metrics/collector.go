// Package metrics exposes the Prometheus metrics a rpc.Connection reports
// call activity through.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "dcerpc"
	subsystem = "rpc"
)

const labelOpnum = "opnum"

// Collector holds all rpc.Connection Prometheus metrics and satisfies
// rpc.Metrics.
type Collector struct {
	// CallsSent counts outbound Request PDUs, labeled by opnum.
	CallsSent *prometheus.CounterVec

	// CallsCompleted counts Responses correlated back to a caller, labeled
	// by opnum.
	CallsCompleted *prometheus.CounterVec

	// CallsFailed counts calls that ended in Fault, cancellation, or
	// connection closure, labeled by opnum.
	CallsFailed *prometheus.CounterVec

	// CallLatency observes the Request-to-Response latency in seconds,
	// labeled by opnum.
	CallLatency *prometheus.HistogramVec

	// Suspensions is the current number of calls awaiting a response.
	Suspensions prometheus.Gauge
}

// NewCollector creates a Collector with all metrics registered against reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.CallsSent,
		c.CallsCompleted,
		c.CallsFailed,
		c.CallLatency,
		c.Suspensions,
	)

	return c
}

func newMetrics() *Collector {
	opnumLabels := []string{labelOpnum}

	return &Collector{
		CallsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calls_sent_total",
			Help:      "Total Request PDUs sent.",
		}, opnumLabels),

		CallsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calls_completed_total",
			Help:      "Total calls that received a correlated Response.",
		}, opnumLabels),

		CallsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calls_failed_total",
			Help:      "Total calls that ended in fault, cancellation, or connection closure.",
		}, opnumLabels),

		CallLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "call_latency_seconds",
			Help:      "Request-to-Response latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, opnumLabels),

		Suspensions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "suspensions_outstanding",
			Help:      "Number of calls currently awaiting a correlated Response.",
		}),
	}
}

// CallSent implements rpc.Metrics.
func (c *Collector) CallSent(opnum uint16) {
	c.CallsSent.WithLabelValues(opnumLabel(opnum)).Inc()
}

// CallCompleted implements rpc.Metrics.
func (c *Collector) CallCompleted(opnum uint16, seconds float64) {
	c.CallsCompleted.WithLabelValues(opnumLabel(opnum)).Inc()
	c.CallLatency.WithLabelValues(opnumLabel(opnum)).Observe(seconds)
}

// CallFailed implements rpc.Metrics.
func (c *Collector) CallFailed(opnum uint16) {
	c.CallsFailed.WithLabelValues(opnumLabel(opnum)).Inc()
}

// SuspensionsOutstanding implements rpc.Metrics, adjusting the gauge by
// delta (positive on suspend, negative on completion/cancellation).
func (c *Collector) SuspensionsOutstanding(delta int) {
	c.Suspensions.Add(float64(delta))
}

func opnumLabel(opnum uint16) string {
	return strconv.Itoa(int(opnum))
}
