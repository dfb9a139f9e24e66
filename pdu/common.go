package pdu

import (
	"encoding/binary"
	"fmt"
)

// PDU is implemented by every concrete PDU body. Decoding is a match on
// the common header's Type byte (see Decode), not dynamic dispatch: each
// variant carries only its own fields plus the shared CommonHeader.
type PDU interface {
	Type() Type
	Encode() ([]byte, error)
	CallID() uint32
}

func putUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getUint16(b []byte) uint16    { return binary.LittleEndian.Uint16(b) }
func getUint32(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }

// splitStubAndVerifier splits the bytes after a PDU's fixed-size fields
// into stub data and trailing verifier, per spec.md §4.2's "Request/
// Response stub slicing" rule: when auth_length > 0 the trailing
// auth_length bytes are the verifier and everything before them is stub;
// when auth_length == 0 the stub is all remaining bytes.
func splitStubAndVerifier(rest []byte, authLength int) (stub, verifier []byte, err error) {
	if authLength == 0 {
		return rest, nil, nil
	}
	if authLength > len(rest) {
		return nil, nil, fmt.Errorf("%w: declared auth_length %d exceeds remaining body %d", ErrMalformed, authLength, len(rest))
	}
	split := len(rest) - authLength
	stub = rest[:split]
	verifier = make([]byte, authLength)
	copy(verifier, rest[split:])
	return stub, verifier, nil
}
