package ndr

import (
	"encoding/binary"
	"fmt"
)

// NullReferentID is the canonical referent id for a null pointer. It is
// never reused as a real referent: ReferentSource starts allocation at 1.
const NullReferentID uint32 = 0

// EncodePointer marshals a top-level referent pointer: a 4-byte referent
// id followed by the marshalled representation of its referent. Passing
// NullReferentID produces the 4-byte null-pointer encoding regardless of
// repr, matching the wire rule that a null pointer carries no payload.
func EncodePointer(referentID uint32, repr []byte) []byte {
	if referentID == NullReferentID {
		return []byte{0, 0, 0, 0}
	}
	out := make([]byte, 4+len(repr))
	binary.LittleEndian.PutUint32(out[0:4], referentID)
	copy(out[4:], repr)
	return out
}

// DecodePointer reads a referent pointer header from b. If the referent
// id is zero, it returns the null sentinel: referentID 0 and an empty
// repr, regardless of what bytes follow in b — callers must not attempt
// to interpret trailing bytes as the referent's representation in that
// case. If non-null, repr is the remainder of b after the 4-byte header;
// the caller (who alone knows the pointed-to type's wire size) is
// responsible for further slicing.
func DecodePointer(b []byte) (referentID uint32, repr []byte, consumed int, err error) {
	if len(b) < 4 {
		return 0, nil, 0, fmt.Errorf("ndr: pointer referent id: %w", ErrTruncated)
	}
	referentID = binary.LittleEndian.Uint32(b[0:4])
	if referentID == NullReferentID {
		return NullReferentID, nil, 4, nil
	}
	return referentID, b[4:], 4, nil
}
