package pdu

import (
	"encoding/binary"
	"fmt"
)

// PortAny is the secondary-address trailer carried in a BindAck: a
// length-prefixed, NUL-terminated ASCII string (e.g. a named pipe path).
// Length counts the bytes after the length field itself, including the
// terminator.
type PortAny struct {
	Address string
}

// EncodedLength is 2 (length field) + len(Address) + 1 (NUL terminator).
func (p PortAny) EncodedLength() int {
	return 2 + len(p.Address) + 1
}

// Encode marshals the PortAny. It does not include the alignment padding
// a BindAck inserts before its ResultList — that is the BindAck's
// responsibility, since the pad count depends on PortAny's own length.
func (p PortAny) Encode() []byte {
	b := make([]byte, p.EncodedLength())
	binary.LittleEndian.PutUint16(b[0:2], uint16(len(p.Address)+1))
	copy(b[2:2+len(p.Address)], p.Address)
	// trailing NUL already zero from make().
	return b
}

// DecodePortAny reads a PortAny from the leading bytes of b, returning
// the bytes consumed (not including any alignment padding that follows).
func DecodePortAny(b []byte) (PortAny, int, error) {
	if len(b) < 2 {
		return PortAny{}, 0, fmt.Errorf("%w: port_any length: need 2 bytes, got %d", ErrMalformed, len(b))
	}
	length := int(binary.LittleEndian.Uint16(b[0:2]))
	if length == 0 {
		return PortAny{}, 2, nil
	}
	if len(b) < 2+length {
		return PortAny{}, 0, fmt.Errorf("%w: port_any string: need %d bytes, got %d", ErrMalformed, 2+length, len(b))
	}
	// length includes the NUL terminator; strip exactly that one byte.
	address := string(b[2 : 2+length-1])
	return PortAny{Address: address}, 2 + length, nil
}

// PaddingBefore returns the number of NUL bytes a BindAck must insert
// after this PortAny before its ResultList. The alignment is computed
// from the declared length field's value (the string plus its
// terminator), not the 2-byte length field itself: a declared length of
// 3 needs 1 pad byte, 4 needs 0, 5 needs 3.
func (p PortAny) PaddingBefore() int {
	n := len(p.Address) + 1
	return (4 - (n % 4)) % 4
}
