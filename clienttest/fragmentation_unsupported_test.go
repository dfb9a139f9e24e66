package clienttest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mellowdrifter/dcerpc/pdu"
	"github.com/mellowdrifter/dcerpc/rpc"
)

// TestTruncatedFragmentRejected exercises the core's single-fragment-only
// invariant: a Response missing LAST_FRAG is not a PDU this client can
// reassemble, so decoding it fails in the inbound pump, which tears the
// whole connection down and completes the outstanding call with
// ErrConnectionClosed rather than returning a partial stub.
func TestTruncatedFragmentRejected(t *testing.T) {
	conn, server := NewConnectionPair()
	require.NoError(t, conn.Acquire(context.Background()))
	defer conn.Release()
	defer server.Close()

	go func() {
		_, raw, err := ReadNextPDU(server)
		if err != nil {
			return
		}
		req, err := pdu.DecodeRequest(raw)
		if err != nil {
			return
		}
		encoded, err := BuildTruncatedFragmentResponse(req.ContextID, req.CallID(), []byte{1, 2, 3})
		if err != nil {
			return
		}
		_, _ = server.Write(encoded)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req := pdu.NewRequest(0, 1, nil)
	_, err := conn.SendMessage(ctx, req, true)
	require.ErrorIs(t, err, rpc.ErrConnectionClosed)
}
