package ndr

import (
	"encoding/binary"
	"fmt"
)

// EncodeUnion marshals a discriminated union as its 4-byte discriminant
// followed by the already-marshalled body of whichever variant the
// discriminant selects.
func EncodeUnion(discriminant uint32, body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(out[0:4], discriminant)
	copy(out[4:], body)
	return out
}

// DecodeUnion reads the discriminant and returns the residual bytes
// unparsed: the core does not know the variant table for any given
// union, so body interpretation is left to the owning interface.
func DecodeUnion(b []byte) (discriminant uint32, body []byte, err error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("ndr: union discriminant: %w", ErrTruncated)
	}
	return binary.LittleEndian.Uint32(b[0:4]), b[4:], nil
}
