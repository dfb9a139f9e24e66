// Package clienttest exercises rpc.Connection end-to-end over an
// in-memory duplex transport: one side is a real rpc.Connection, the
// other is a raw net.Conn a test drives directly to play the server role
// of the wire protocol.
package clienttest

import (
	"net"

	"github.com/mellowdrifter/dcerpc/rpc"
)

// NewConnectionPair returns an unacquired rpc.Connection wired to one
// half of an in-memory duplex pipe, and the raw net.Conn for the other
// half. Callers must still call Acquire before using the connection.
func NewConnectionPair(opts ...rpc.Option) (*rpc.Connection, net.Conn) {
	client, server := net.Pipe()
	conn := rpc.NewConnection(rpc.NewTCPTransport(client), opts...)
	return conn, server
}
