package rpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTCPTransportPair(t *testing.T) (*TCPTransport, *TCPTransport) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			acceptedCh <- conn
		}
	}()

	client, err := DialTCP(context.Background(), ln.Addr().String())
	require.NoError(t, err)

	server := <-acceptedCh
	return client, &TCPTransport{conn: server}
}

func TestTCPTransportRoundTrip(t *testing.T) {
	client, server := newTCPTransportPair(t)
	defer client.Close()
	defer server.Close()

	pdu := make([]byte, 16)
	pdu[8] = 16 // frag_length low byte

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Write(ctx, pdu)
	require.NoError(t, err)

	got, err := server.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, pdu, got)
}

func TestTCPTransportReadCancellation(t *testing.T) {
	client, server := newTCPTransportPair(t)
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := server.Read(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
