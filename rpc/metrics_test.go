package rpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mellowdrifter/dcerpc/pdu"
)

// fakeMetrics records every call a Connection makes through the Metrics
// interface, so a test can assert the integration is actually exercised.
type fakeMetrics struct {
	mu          sync.Mutex
	sent        []uint16
	completed   []uint16
	failed      []uint16
	suspensions int
}

func (f *fakeMetrics) CallSent(opnum uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, opnum)
}

func (f *fakeMetrics) CallCompleted(opnum uint16, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, opnum)
}

func (f *fakeMetrics) CallFailed(opnum uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, opnum)
}

func (f *fakeMetrics) SuspensionsOutstanding(delta int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suspensions += delta
}

func (f *fakeMetrics) snapshot() (sent, completed, failed []uint16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint16(nil), f.sent...), append([]uint16(nil), f.completed...), append([]uint16(nil), f.failed...)
}

// TestWithMetricsRecordsCallLifecycle exercises the rpc.Metrics
// integration end to end: a successful call reports CallSent and
// CallCompleted for its opnum, driven by a real Connection rather than a
// direct call into the Metrics implementation.
func TestWithMetricsRecordsCallLifecycle(t *testing.T) {
	client, server := newPipeTransportPair()
	fm := &fakeMetrics{}
	conn := NewConnection(client, WithMetrics(fm))
	require.NoError(t, conn.Acquire(context.Background()))
	t.Cleanup(func() {
		_ = conn.Release()
		_ = server.Close()
	})

	go func() {
		raw, err := server.Read(context.Background())
		if err != nil {
			return
		}
		req, err := pdu.DecodeRequest(raw)
		if err != nil {
			return
		}
		resp := pdu.NewResponse(req.ContextID, nil)
		resp.Header.CallID = req.CallID()
		encoded, err := resp.Encode()
		if err != nil {
			return
		}
		_, _ = server.Write(context.Background(), encoded)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req := pdu.NewRequest(0, 7, nil)
	_, err := conn.SendMessage(ctx, req, true)
	require.NoError(t, err)

	sent, completed, failed := fm.snapshot()
	require.Equal(t, []uint16{7}, sent)
	require.Equal(t, []uint16{7}, completed)
	require.Empty(t, failed)
}
