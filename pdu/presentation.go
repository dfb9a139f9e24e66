package pdu

import (
	"encoding/binary"
	"fmt"
)

// PresentationSyntaxLength is the fixed wire size of a PresentationSyntax:
// a 16-byte mixed-endian UUID plus a 4-byte version.
const PresentationSyntaxLength = 20

// PresentationSyntax identifies either an abstract interface or a
// transfer syntax: a UUID paired with an interface version.
type PresentationSyntax struct {
	UUID    UUID
	Version uint32
}

// Encode marshals the presentation syntax to its 20-byte wire form.
func (p PresentationSyntax) Encode() []byte {
	b := make([]byte, PresentationSyntaxLength)
	copy(b[0:16], p.UUID[:])
	binary.LittleEndian.PutUint32(b[16:20], p.Version)
	return b
}

// DecodePresentationSyntax reads a PresentationSyntax from the leading
// bytes of b.
func DecodePresentationSyntax(b []byte) (PresentationSyntax, int, error) {
	if len(b) < PresentationSyntaxLength {
		return PresentationSyntax{}, 0, fmt.Errorf("%w: presentation syntax: need %d bytes, got %d", ErrMalformed, PresentationSyntaxLength, len(b))
	}
	var p PresentationSyntax
	copy(p.UUID[:], b[0:16])
	p.Version = binary.LittleEndian.Uint32(b[16:20])
	return p, PresentationSyntaxLength, nil
}
