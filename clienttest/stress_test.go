package clienttest

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mellowdrifter/dcerpc/pdu"
)

// TestConcurrentCalls exercises the correlator under load: many goroutines
// issue calls on the same Connection at once, a single server goroutine
// answers them strictly in receipt order, and every caller must get back
// its own opnum echoed in the stub data regardless of how the responses
// interleave with other callers' sends.
func TestConcurrentCalls(t *testing.T) {
	conn, server := NewConnectionPair()
	require.NoError(t, conn.Acquire(context.Background()))
	defer conn.Release()
	defer server.Close()

	const numGoroutines = 10
	const callsPerGoroutine = 10
	const total = numGoroutines * callsPerGoroutine

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		for i := 0; i < total; i++ {
			_, raw, err := ReadNextPDU(server)
			if err != nil {
				return
			}
			req, err := pdu.DecodeRequest(raw)
			if err != nil {
				return
			}
			stub := make([]byte, 2)
			binary.LittleEndian.PutUint16(stub, req.Opnum)
			resp := pdu.NewResponse(req.ContextID, stub)
			resp.Header.CallID = req.CallID()
			encoded, err := resp.Encode()
			if err != nil {
				return
			}
			if _, err := server.Write(encoded); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	startSignal := make(chan struct{})
	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			<-startSignal

			for i := 0; i < callsPerGoroutine; i++ {
				opnum := uint16(goroutineID*callsPerGoroutine + i)
				req := pdu.NewRequest(0, opnum, nil)
				res, err := conn.SendMessage(ctx, req, true)
				if !assertNoError(t, err) {
					continue
				}
				resp := res.(*pdu.Response)
				echoed := binary.LittleEndian.Uint16(resp.StubData)
				if echoed != opnum {
					t.Errorf("echoed opnum = %d, want %d", echoed, opnum)
				}
			}
		}(g)
	}

	close(startSignal)
	wg.Wait()
	<-serverDone
}

// assertNoError reports a goroutine-safe failure via t.Errorf instead of
// require, since require.NoError calls t.FailNow which is only safe to
// call from the test's own goroutine.
func assertNoError(t *testing.T, err error) bool {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
		return false
	}
	return true
}
