package rpc

import "context"

// Transport is the byte-level collaborator a Connection drives. Read must
// return exactly one PDU's worth of bytes per call — the implementation
// is responsible for message framing, typically by honoring the wire
// fragment_length field — and Write must write one PDU atomically.
//
// Implementations are not required to be safe for concurrent use from
// more than one goroutine; Connection never calls Read and Write
// concurrently with themselves, only with each other.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, b []byte) (int, error)
}
