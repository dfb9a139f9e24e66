package ndr

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// ConformantVaryingString is NDR's [string] representation: a maximum
// element count, an offset (always 0 for the strings this module
// produces), an actual element count, and that many UTF-16LE code units.
// ActualCount includes the single trailing NUL code unit, per the NDR
// specification (spec.md §9 resolves a conflicting source in favor of
// this reading).
type ConformantVaryingString struct {
	MaximumCount uint32
	Offset       uint32
	ActualCount  uint32
	Value        string
}

// EncodeString marshals s as a NUL-terminated NDR conformant-varying
// string: 12 bytes of header followed by ActualCount UTF-16LE code units,
// right-padded with NUL bytes to a multiple of 4 bytes.
func EncodeString(s string) []byte {
	units := utf16.Encode([]rune(s))
	count := uint32(len(units)) + 1 // + trailing NUL

	body := make([]byte, 12+int(count)*2)
	binary.LittleEndian.PutUint32(body[0:4], count)
	binary.LittleEndian.PutUint32(body[4:8], 0)
	binary.LittleEndian.PutUint32(body[8:12], count)

	off := 12
	for _, u := range units {
		binary.LittleEndian.PutUint16(body[off:off+2], u)
		off += 2
	}
	// trailing NUL code unit already zero from make().

	return Pad(body)
}

// DecodeString parses a NDR conformant-varying string starting at b[0],
// returning the decoded value (with exactly one trailing NUL code unit
// trimmed — embedded NULs survive) and the number of bytes consumed.
func DecodeString(b []byte) (string, int, error) {
	if len(b) < 12 {
		return "", 0, fmt.Errorf("ndr: conformant-varying string header: %w", ErrTruncated)
	}

	maxCount := binary.LittleEndian.Uint32(b[0:4])
	offset := binary.LittleEndian.Uint32(b[4:8])
	actualCount := binary.LittleEndian.Uint32(b[8:12])

	if actualCount > maxCount {
		return "", 0, fmt.Errorf("ndr: actual_count %d exceeds maximum_count %d", actualCount, maxCount)
	}

	payloadLen := int(actualCount) * 2
	end := 12 + payloadLen
	if len(b) < end {
		return "", 0, fmt.Errorf("ndr: conformant-varying string payload: %w", ErrTruncated)
	}

	units := make([]uint16, actualCount)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[12+i*2 : 14+i*2])
	}

	// Trim exactly one trailing NUL code unit, if present; never strip
	// embedded NULs or more than one terminator.
	if len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}

	consumed := end
	if padded := PadLength(end); padded <= len(b) {
		consumed = padded
	}

	_ = offset // offset is read but neither applied nor returned; EncodeString always writes 0

	return string(utf16.Decode(units)), consumed, nil
}
