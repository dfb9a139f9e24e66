package pdu

import "fmt"

// Response carries a call's result stub data back to the client.
type Response struct {
	Header       CommonHeader
	AllocHint    uint32
	ContextID    uint16
	CancelCount  uint8
	StubData     []byte
	AuthVerifier []byte
}

// NewResponse builds a Response PDU with spec-default header fields.
func NewResponse(contextID uint16, stub []byte) *Response {
	return &Response{
		Header: CommonHeader{
			MajorVersion: MajorVersion,
			MinorVersion: MinorVersion,
			Type:         TypeResponse,
			Flags:        DefaultFlags,
			DRep:         DefaultDataRepresentation,
		},
		AllocHint: uint32(len(stub)),
		ContextID: contextID,
		StubData:  stub,
	}
}

// Type implements PDU.
func (r *Response) Type() Type { return TypeResponse }

// CallID returns the correlator call id carried in the common header.
func (r *Response) CallID() uint32 { return r.Header.CallID }

// Encode marshals the full PDU.
func (r *Response) Encode() ([]byte, error) {
	if len(r.AuthVerifier) == 0 && r.Header.AuthLength != 0 {
		return nil, ErrAuthVerifierRequired
	}

	bodyLen := 8 + len(r.StubData) + len(r.AuthVerifier)
	total := CommonHeaderLength + bodyLen
	out := make([]byte, total)

	header := r.Header
	header.Type = TypeResponse
	header.FragLength = uint16(total)
	header.AuthLength = uint16(len(r.AuthVerifier))
	header.Encode(out[0:CommonHeaderLength])

	off := CommonHeaderLength
	putUint32(out[off:off+4], r.AllocHint)
	off += 4
	putUint16(out[off:off+2], r.ContextID)
	off += 2
	out[off] = r.CancelCount
	off++
	off++ // reserved byte, zero

	copy(out[off:off+len(r.StubData)], r.StubData)
	off += len(r.StubData)

	copy(out[off:], r.AuthVerifier)

	return out, nil
}

// DecodeResponse parses a full Response PDU from b, including its common
// header.
func DecodeResponse(b []byte) (*Response, error) {
	header, err := DecodeCommonHeader(b)
	if err != nil {
		return nil, err
	}
	if header.Type != TypeResponse {
		return nil, fmt.Errorf("%w: expected Response, got %s", ErrTypeMismatch, header.Type)
	}
	if err := checkFragmentation(header); err != nil {
		return nil, err
	}
	if int(header.FragLength) != len(b) {
		return nil, fmt.Errorf("%w: fragment_length %d does not match observed size %d", ErrMalformed, header.FragLength, len(b))
	}

	body := b[CommonHeaderLength:]
	if len(body) < 8 {
		return nil, fmt.Errorf("%w: Response body too short", ErrMalformed)
	}

	allocHint := getUint32(body[0:4])
	contextID := getUint16(body[4:6])
	cancelCount := body[6]
	// body[7] reserved, ignored.

	rest := body[8:]
	stub, verifier, err := splitStubAndVerifier(rest, int(header.AuthLength))
	if err != nil {
		return nil, err
	}

	return &Response{
		Header:       header,
		AllocHint:    allocHint,
		ContextID:    contextID,
		CancelCount:  cancelCount,
		StubData:     stub,
		AuthVerifier: verifier,
	}, nil
}
