package pdu

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// UUID is a 16-byte DCE UUID stored in its wire ("mixed-endian", aka
// bytes_le) form: the first three fields little-endian, the last two
// fields big-endian, matching presentation syntaxes and Request object
// UUIDs alike.
type UUID [16]byte

// ParseUUID parses the canonical hyphenated textual form
// (e.g. "99fcfec4-5260-101b-bbcb-00aa0021347a") into its wire bytes.
func ParseUUID(s string) (UUID, error) {
	var u UUID
	digits := make([]byte, 0, 32)
	for _, r := range s {
		if r == '-' {
			continue
		}
		digits = append(digits, byte(r))
	}
	if len(digits) != 32 {
		return u, fmt.Errorf("pdu: invalid UUID string %q", s)
	}

	raw := make([]byte, 16)
	if _, err := hex.Decode(raw, digits); err != nil {
		return u, fmt.Errorf("pdu: invalid UUID string %q: %w", s, err)
	}

	// raw is big-endian canonical form; convert to mixed-endian wire form.
	binary.LittleEndian.PutUint32(u[0:4], binary.BigEndian.Uint32(raw[0:4]))
	binary.LittleEndian.PutUint16(u[4:6], binary.BigEndian.Uint16(raw[4:6]))
	binary.LittleEndian.PutUint16(u[6:8], binary.BigEndian.Uint16(raw[6:8]))
	copy(u[8:16], raw[8:16])
	return u, nil
}

// String renders the UUID back to canonical hyphenated form.
func (u UUID) String() string {
	var raw [16]byte
	binary.BigEndian.PutUint32(raw[0:4], binary.LittleEndian.Uint32(u[0:4]))
	binary.BigEndian.PutUint16(raw[4:6], binary.LittleEndian.Uint16(u[4:6]))
	binary.BigEndian.PutUint16(raw[6:8], binary.LittleEndian.Uint16(u[6:8]))
	copy(raw[8:16], u[8:16])

	out := make([]byte, 36)
	pos := 0
	writeHex := func(bs []byte) {
		hex.Encode(out[pos:], bs)
		pos += len(bs) * 2
	}
	writeHex(raw[0:4])
	out[pos] = '-'
	pos++
	writeHex(raw[4:6])
	out[pos] = '-'
	pos++
	writeHex(raw[6:8])
	out[pos] = '-'
	pos++
	writeHex(raw[8:10])
	out[pos] = '-'
	pos++
	writeHex(raw[10:16])
	return string(out)
}
