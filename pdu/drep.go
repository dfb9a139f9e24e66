package pdu

import "fmt"

// CharacterRep selects the character set used by string fields on the wire.
type CharacterRep uint8

const (
	CharASCII  CharacterRep = 0
	CharEBCDIC CharacterRep = 1
)

// IntegerRep selects the byte order used by multi-byte integers.
type IntegerRep uint8

const (
	IntegerBigEndian    IntegerRep = 0
	IntegerLittleEndian IntegerRep = 1
)

// FloatRep selects the floating-point representation.
type FloatRep uint8

const (
	FloatIEEE FloatRep = 0
	FloatVAX  FloatRep = 1
	FloatCray FloatRep = 2
	FloatIBM  FloatRep = 3
)

// DataRepresentation is the 4-byte "DRep" tuple in the common header.
// This core only encodes and round-trips ASCII/little-endian/IEEE; other
// values are recognized on decode but not exercised by the encoder, per
// spec.md's explicit endianness non-goal.
type DataRepresentation struct {
	Character CharacterRep
	Integer   IntegerRep
	Float     FloatRep
}

// DefaultDataRepresentation is ASCII + little-endian integers + IEEE
// floats, the default for every locally-built PDU.
var DefaultDataRepresentation = DataRepresentation{
	Character: CharASCII,
	Integer:   IntegerLittleEndian,
	Float:     FloatIEEE,
}

// Encode marshals the DRep into its 4-byte wire form.
func (d DataRepresentation) Encode() [4]byte {
	var b [4]byte
	b[0] = byte(d.Character) | byte(d.Integer)<<4
	b[1] = byte(d.Float)
	// b[2], b[3] reserved, zero.
	return b
}

// DecodeDataRepresentation parses a 4-byte DRep, rejecting non-zero
// reserved bytes as malformed.
func DecodeDataRepresentation(b [4]byte) (DataRepresentation, error) {
	if b[2] != 0 || b[3] != 0 {
		return DataRepresentation{}, fmt.Errorf("%w: data representation reserved bytes non-zero", ErrMalformed)
	}
	return DataRepresentation{
		Character: CharacterRep(b[0] & 0x0F),
		Integer:   IntegerRep(b[0] >> 4 & 0x0F),
		Float:     FloatRep(b[1]),
	}, nil
}

// IsLittleEndian reports whether this DRep selects little-endian
// integers, the only integer representation this core's encoder ever
// produces and the only one its decoder assumes when reading stub-data
// adjacent fields that are NDR (always little-endian) rather than
// header fields (which are always little-endian regardless of DRep).
func (d DataRepresentation) IsLittleEndian() bool {
	return d.Integer == IntegerLittleEndian
}
