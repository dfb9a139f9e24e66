package rpc

import "go.uber.org/zap"

// Metrics is the subset of internal/metrics.Collector a Connection needs.
// The zero value of the default noopMetrics satisfies it without pulling
// in Prometheus for a consumer that only wants the library.
type Metrics interface {
	CallSent(opnum uint16)
	CallCompleted(opnum uint16, seconds float64)
	CallFailed(opnum uint16)
	SuspensionsOutstanding(delta int)
}

type noopMetrics struct{}

func (noopMetrics) CallSent(uint16)                {}
func (noopMetrics) CallCompleted(uint16, float64)  {}
func (noopMetrics) CallFailed(uint16)              {}
func (noopMetrics) SuspensionsOutstanding(int)     {}

// Option configures a Connection at construction time.
type Option func(*Connection)

// WithLogger attaches a structured logger. Connection lifecycle events
// (acquire and release, bind acknowledged, transport and decode failures,
// cancelled, faulted, duplicate and late calls, suspensions completed at
// teardown) are logged through it. Defaults to zap.NewNop().Sugar().
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Connection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches a Metrics sink. Defaults to a no-op implementation.
func WithMetrics(m Metrics) Option {
	return func(c *Connection) {
		if m != nil {
			c.metrics = m
		}
	}
}
