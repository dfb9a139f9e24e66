package pdu

import "fmt"

// BindAck is the server's reply to a Bind, carrying the secondary address
// (PortAny) and the negotiated result for each proposed context.
type BindAck struct {
	Header       CommonHeader
	MaxXmitFrag  uint16
	MaxRecvFrag  uint16
	AssocGroupID uint32
	SecAddr      PortAny
	ResultList   ResultList
	AuthVerifier []byte
}

// NewBindAck builds a BindAck PDU with spec-default header fields.
func NewBindAck(secAddr PortAny, results ResultList) *BindAck {
	return &BindAck{
		Header: CommonHeader{
			MajorVersion: MajorVersion,
			MinorVersion: MinorVersion,
			Type:         TypeBindAck,
			Flags:        DefaultFlags,
			DRep:         DefaultDataRepresentation,
		},
		MaxXmitFrag: DefaultMaxXmitFrag,
		MaxRecvFrag: DefaultMaxRecvFrag,
		SecAddr:     secAddr,
		ResultList:  results,
	}
}

// Type implements PDU.
func (b *BindAck) Type() Type { return TypeBindAck }

// CallID returns the correlator call id carried in the common header.
func (b *BindAck) CallID() uint32 { return b.Header.CallID }

// Encode marshals the full PDU. The pad count between PortAny and
// ResultList is (4 - (len(PortAny) mod 4)) mod 4 NUL bytes, computed from
// PortAny's declared length (the string plus its terminator, see
// PortAny.PaddingBefore).
func (b *BindAck) Encode() ([]byte, error) {
	portAnyBytes := b.SecAddr.Encode()
	padLen := b.SecAddr.PaddingBefore()
	resultBytes := b.ResultList.Encode()

	bodyLen := 8 + len(portAnyBytes) + padLen + len(resultBytes) + len(b.AuthVerifier)
	total := CommonHeaderLength + bodyLen
	out := make([]byte, total)

	header := b.Header
	header.Type = TypeBindAck
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

	copy(out[off:], portAnyBytes)
	off += len(portAnyBytes)
	// padLen bytes already zero from make().
	off += padLen

	copy(out[off:], resultBytes)
	off += len(resultBytes)

	copy(out[off:], b.AuthVerifier)

	return out, nil
}

// DecodeBindAck parses a full BindAck PDU from b, including its common
// header.
func DecodeBindAck(b []byte) (*BindAck, error) {
	header, err := DecodeCommonHeader(b)
	if err != nil {
		return nil, err
	}
	if header.Type != TypeBindAck {
		return nil, fmt.Errorf("%w: expected BindAck, got %s", ErrTypeMismatch, header.Type)
	}
	if err := checkFragmentation(header); err != nil {
		return nil, err
	}
	if int(header.FragLength) != len(b) {
		return nil, fmt.Errorf("%w: fragment_length %d does not match observed size %d", ErrMalformed, header.FragLength, len(b))
	}

	body := b[CommonHeaderLength:]
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: BindAck body too short", ErrMalformed)
	}

	maxXmit := getUint16(body[0:2])
	maxRecv := getUint16(body[2:4])
	assocGroup := getUint32(body[4:8])

	portAny, n, err := DecodePortAny(body[8:])
	if err != nil {
		return nil, err
	}
	off := 8 + n

	padLen := portAny.PaddingBefore()
	if off+padLen > len(body) {
		return nil, fmt.Errorf("%w: BindAck truncated before ResultList padding", ErrMalformed)
	}
	off += padLen

	resultList, n, err := DecodeResultList(body[off:])
	if err != nil {
		return nil, err
	}
	off += n

	rest := body[off:]
	stub, verifier, err := splitStubAndVerifier(rest, int(header.AuthLength))
	if err != nil {
		return nil, err
	}
	if len(stub) != 0 {
		return nil, fmt.Errorf("%w: unexpected trailing bytes after BindAck result list", ErrMalformed)
	}

	return &BindAck{
		Header:       header,
		MaxXmitFrag:  maxXmit,
		MaxRecvFrag:  maxRecv,
		AssocGroupID: assocGroup,
		SecAddr:      portAny,
		ResultList:   resultList,
		AuthVerifier: verifier,
	}, nil
}
