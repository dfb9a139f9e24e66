package pdu

import "fmt"

// Bind is the client's handshake PDU proposing a set of presentation
// contexts.
type Bind struct {
	Header       CommonHeader
	MaxXmitFrag  uint16
	MaxRecvFrag  uint16
	AssocGroupID uint32
	ContextList  ContextList
	AuthVerifier []byte
}

// NewBind builds a Bind PDU with spec-default header fields
// (major/minor version, FIRST_FRAG|LAST_FRAG, ASCII/LE/IEEE DRep, default
// fragment sizes). CallID is assigned later by the connection.
func NewBind(contextList ContextList) *Bind {
	return &Bind{
		Header: CommonHeader{
			MajorVersion: MajorVersion,
			MinorVersion: MinorVersion,
			Type:         TypeBind,
			Flags:        DefaultFlags,
			DRep:         DefaultDataRepresentation,
		},
		MaxXmitFrag: DefaultMaxXmitFrag,
		MaxRecvFrag: DefaultMaxRecvFrag,
		ContextList: contextList,
	}
}

// Type implements PDU.
func (b *Bind) Type() Type { return TypeBind }

// CallID returns the correlator call id carried in the common header.
func (b *Bind) CallID() uint32 { return b.Header.CallID }

// Encode marshals the full PDU: common header followed by the Bind body.
// FragLength and AuthLength are computed from current field values, never
// read from Header.
func (b *Bind) Encode() ([]byte, error) {
	if len(b.AuthVerifier) == 0 && b.Header.AuthLength != 0 {
		return nil, ErrAuthVerifierRequired
	}

	bodyLen := 8 + b.ContextList.EncodedLength() + len(b.AuthVerifier)
	total := CommonHeaderLength + bodyLen

	out := make([]byte, total)

	header := b.Header
	header.Type = TypeBind
	header.FragLength = uint16(total)
	header.AuthLength = uint16(len(b.AuthVerifier))
	header.Encode(out[0:CommonHeaderLength])

	off := CommonHeaderLength
	putUint16(out[off:off+2], b.MaxXmitFrag)
	off += 2
	putUint16(out[off:off+2], b.MaxRecvFrag)
	off += 2
	putUint32(out[off:off+4], b.AssocGroupID)
	off += 4

	ctxBytes := b.ContextList.Encode()
	copy(out[off:off+len(ctxBytes)], ctxBytes)
	off += len(ctxBytes)

	copy(out[off:], b.AuthVerifier)

	return out, nil
}

// DecodeBind parses a full Bind PDU from b, including its common header.
func DecodeBind(b []byte) (*Bind, error) {
	header, err := DecodeCommonHeader(b)
	if err != nil {
		return nil, err
	}
	if header.Type != TypeBind {
		return nil, fmt.Errorf("%w: expected Bind, got %s", ErrTypeMismatch, header.Type)
	}
	if err := checkFragmentation(header); err != nil {
		return nil, err
	}
	if int(header.FragLength) != len(b) {
		return nil, fmt.Errorf("%w: fragment_length %d does not match observed size %d", ErrMalformed, header.FragLength, len(b))
	}

	body := b[CommonHeaderLength:]
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: Bind body too short", ErrMalformed)
	}

	maxXmit := getUint16(body[0:2])
	maxRecv := getUint16(body[2:4])
	assocGroup := getUint32(body[4:8])

	ctxList, n, err := DecodeContextList(body[8:])
	if err != nil {
		return nil, err
	}
	off := 8 + n

	rest := body[off:]
	stub, verifier, err := splitStubAndVerifier(rest, int(header.AuthLength))
	if err != nil {
		return nil, err
	}
	if len(stub) != 0 {
		return nil, fmt.Errorf("%w: unexpected trailing bytes after Bind context list", ErrMalformed)
	}

	return &Bind{
		Header:       header,
		MaxXmitFrag:  maxXmit,
		MaxRecvFrag:  maxRecv,
		AssocGroupID: assocGroup,
		ContextList:  ctxList,
		AuthVerifier: verifier,
	}, nil
}
