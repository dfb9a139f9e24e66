package pdu

import (
	"encoding/binary"
	"fmt"
)

// CommonHeader is the 16-byte header shared by every PDU. FragLength and
// AuthLength are computed at encode time from the body that follows; a
// CommonHeader decoded off the wire carries the values the peer declared,
// which callers must cross-check against the observed PDU size.
type CommonHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	Type         Type
	Flags        Flags
	DRep         DataRepresentation
	FragLength   uint16
	AuthLength   uint16
	CallID       uint32
}

// Encode writes the common header into the first 16 bytes of b. b must be
// at least CommonHeaderLength bytes long.
func (h CommonHeader) Encode(b []byte) {
	b[0] = h.MajorVersion
	b[1] = h.MinorVersion
	b[2] = byte(h.Type)
	b[3] = byte(h.Flags)
	drep := h.DRep.Encode()
	copy(b[4:8], drep[:])
	binary.LittleEndian.PutUint16(b[8:10], h.FragLength)
	binary.LittleEndian.PutUint16(b[10:12], h.AuthLength)
	binary.LittleEndian.PutUint32(b[12:16], h.CallID)
}

// DecodeCommonHeader parses the leading CommonHeaderLength bytes of b.
func DecodeCommonHeader(b []byte) (CommonHeader, error) {
	if len(b) < CommonHeaderLength {
		return CommonHeader{}, fmt.Errorf("%w: common header needs %d bytes, got %d", ErrMalformed, CommonHeaderLength, len(b))
	}

	var drepBytes [4]byte
	copy(drepBytes[:], b[4:8])
	drep, err := DecodeDataRepresentation(drepBytes)
	if err != nil {
		return CommonHeader{}, err
	}

	ptype := Type(b[2])
	if !knownType(ptype) {
		return CommonHeader{}, fmt.Errorf("%w: unknown PDU type %d", ErrMalformed, b[2])
	}

	return CommonHeader{
		MajorVersion: b[0],
		MinorVersion: b[1],
		Type:         ptype,
		Flags:        Flags(b[3]),
		DRep:         drep,
		FragLength:   binary.LittleEndian.Uint16(b[8:10]),
		AuthLength:   binary.LittleEndian.Uint16(b[10:12]),
		CallID:       binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

func knownType(t Type) bool {
	switch t {
	case TypeRequest, TypeBind, TypeResponse, TypeBindAck, TypeFault:
		return true
	default:
		return false
	}
}

// checkFragmentation rejects any header missing FIRST_FRAG or LAST_FRAG:
// this core assumes one call maps to exactly one PDU.
func checkFragmentation(h CommonHeader) error {
	if !h.Flags.Has(FlagFirstFrag) || !h.Flags.Has(FlagLastFrag) {
		return ErrFragmentationUnsupported
	}
	return nil
}
