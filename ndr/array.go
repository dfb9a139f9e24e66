package ndr

import (
	"encoding/binary"
	"fmt"
)

// EncodeConformantArray marshals a unidimensional conformant array: a
// 4-byte maximum-count followed by that many fixed-width elements. All
// elements must share the same width; callers that need padding between
// the header and elements (none of NDR's primitive arrays do) handle it
// themselves before calling this.
func EncodeConformantArray(elems [][]byte) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(elems)))
	for _, e := range elems {
		out = append(out, e...)
	}
	return out
}

// DecodeConformantArray reads a maximum-count header and that many
// elemSize-byte elements, returning the decoded elements and the number
// of bytes consumed.
func DecodeConformantArray(b []byte, elemSize int) (elems [][]byte, consumed int, err error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("ndr: conformant array maximum_count: %w", ErrTruncated)
	}
	maxCount := binary.LittleEndian.Uint32(b[0:4])
	need := 4 + int(maxCount)*elemSize
	if len(b) < need {
		return nil, 0, fmt.Errorf("ndr: conformant array elements: %w", ErrTruncated)
	}

	elems = make([][]byte, maxCount)
	off := 4
	for i := range elems {
		elems[i] = b[off : off+elemSize]
		off += elemSize
	}
	return elems, need, nil
}
