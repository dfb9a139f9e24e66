package pdu

import "fmt"

// Request carries a call's stub data to the server.
type Request struct {
	Header     CommonHeader
	AllocHint  uint32
	ContextID  uint16
	Opnum      uint16
	ObjectUUID *UUID // present iff Header.Flags has FlagObjectUUID set
	StubData   []byte
	AuthVerifier []byte
}

// NewRequest builds a Request PDU with spec-default header fields.
// AllocHint defaults to the stub length.
func NewRequest(contextID, opnum uint16, stub []byte) *Request {
	return &Request{
		Header: CommonHeader{
			MajorVersion: MajorVersion,
			MinorVersion: MinorVersion,
			Type:         TypeRequest,
			Flags:        DefaultFlags,
			DRep:         DefaultDataRepresentation,
		},
		AllocHint: uint32(len(stub)),
		ContextID: contextID,
		Opnum:     opnum,
		StubData:  stub,
	}
}

// Type implements PDU.
func (r *Request) Type() Type { return TypeRequest }

// CallID returns the correlator call id carried in the common header.
func (r *Request) CallID() uint32 { return r.Header.CallID }

// Encode marshals the full PDU.
func (r *Request) Encode() ([]byte, error) {
	if len(r.AuthVerifier) == 0 && r.Header.AuthLength != 0 {
		return nil, ErrAuthVerifierRequired
	}

	flags := r.Header.Flags
	if r.ObjectUUID != nil {
		flags |= FlagObjectUUID
	} else {
		flags &^= FlagObjectUUID
	}

	uuidLen := 0
	if r.ObjectUUID != nil {
		uuidLen = 16
	}

	bodyLen := 8 + uuidLen + len(r.StubData) + len(r.AuthVerifier)
	total := CommonHeaderLength + bodyLen
	out := make([]byte, total)

	header := r.Header
	header.Type = TypeRequest
	header.Flags = flags
	header.FragLength = uint16(total)
	header.AuthLength = uint16(len(r.AuthVerifier))
	header.Encode(out[0:CommonHeaderLength])

	off := CommonHeaderLength
	putUint32(out[off:off+4], r.AllocHint)
	off += 4
	putUint16(out[off:off+2], r.ContextID)
	off += 2
	putUint16(out[off:off+2], r.Opnum)
	off += 2

	if r.ObjectUUID != nil {
		copy(out[off:off+16], r.ObjectUUID[:])
		off += 16
	}

	copy(out[off:off+len(r.StubData)], r.StubData)
	off += len(r.StubData)

	copy(out[off:], r.AuthVerifier)

	return out, nil
}

// DecodeRequest parses a full Request PDU from b, including its common
// header. A mismatch between FlagObjectUUID and the actual presence of an
// object UUID is malformed by construction here: the flag alone decides
// whether 16 bytes are consumed, so there is no way for the two to
// disagree once decoding succeeds.
func DecodeRequest(b []byte) (*Request, error) {
	header, err := DecodeCommonHeader(b)
	if err != nil {
		return nil, err
	}
	if header.Type != TypeRequest {
		return nil, fmt.Errorf("%w: expected Request, got %s", ErrTypeMismatch, header.Type)
	}
	if err := checkFragmentation(header); err != nil {
		return nil, err
	}
	if int(header.FragLength) != len(b) {
		return nil, fmt.Errorf("%w: fragment_length %d does not match observed size %d", ErrMalformed, header.FragLength, len(b))
	}

	body := b[CommonHeaderLength:]
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: Request body too short", ErrMalformed)
	}

	allocHint := getUint32(body[0:4])
	contextID := getUint16(body[4:6])
	opnum := getUint16(body[6:8])
	off := 8

	var objectUUID *UUID
	if header.Flags.Has(FlagObjectUUID) {
		if len(body) < off+16 {
			return nil, fmt.Errorf("%w: Request declares object UUID but body is too short", ErrMalformed)
		}
		var u UUID
		copy(u[:], body[off:off+16])
		objectUUID = &u
		off += 16
	}

	rest := body[off:]
	stub, verifier, err := splitStubAndVerifier(rest, int(header.AuthLength))
	if err != nil {
		return nil, err
	}

	return &Request{
		Header:       header,
		AllocHint:    allocHint,
		ContextID:    contextID,
		Opnum:        opnum,
		ObjectUUID:   objectUUID,
		StubData:     stub,
		AuthVerifier: verifier,
	}, nil
}
