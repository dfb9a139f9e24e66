package pdu

import "fmt"

// Fault is returned by a server in place of a Response when a call could
// not be completed. spec.md leaves Fault handling as an open question
// (§9(a)); this core recognizes and decodes it so rpc.Connection can
// surface it as a distinct per-call error rather than a malformed PDU.
// This core's client role never constructs a Fault PDU; Encode exists for
// test fixtures exercising the decode path.
type Fault struct {
	Header      CommonHeader
	AllocHint   uint32
	ContextID   uint16
	CancelCount uint8
	Status      uint32
	StubData    []byte
}

// Type implements PDU.
func (f *Fault) Type() Type { return TypeFault }

// CallID returns the correlator call id carried in the common header.
func (f *Fault) CallID() uint32 { return f.Header.CallID }

// Encode marshals the full PDU.
func (f *Fault) Encode() ([]byte, error) {
	bodyLen := 12 + len(f.StubData)
	total := CommonHeaderLength + bodyLen
	out := make([]byte, total)

	header := f.Header
	header.Type = TypeFault
	header.FragLength = uint16(total)
	header.AuthLength = 0
	header.Encode(out[0:CommonHeaderLength])

	off := CommonHeaderLength
	putUint32(out[off:off+4], f.AllocHint)
	off += 4
	putUint16(out[off:off+2], f.ContextID)
	off += 2
	out[off] = f.CancelCount
	off++
	off++ // reserved
	putUint32(out[off:off+4], f.Status)
	off += 4

	copy(out[off:], f.StubData)

	return out, nil
}

// DecodeFault parses a full Fault PDU from b, including its common
// header.
func DecodeFault(b []byte) (*Fault, error) {
	header, err := DecodeCommonHeader(b)
	if err != nil {
		return nil, err
	}
	if header.Type != TypeFault {
		return nil, fmt.Errorf("%w: expected Fault, got %s", ErrTypeMismatch, header.Type)
	}
	if err := checkFragmentation(header); err != nil {
		return nil, err
	}
	if int(header.FragLength) != len(b) {
		return nil, fmt.Errorf("%w: fragment_length %d does not match observed size %d", ErrMalformed, header.FragLength, len(b))
	}

	body := b[CommonHeaderLength:]
	if len(body) < 12 {
		return nil, fmt.Errorf("%w: Fault body too short", ErrMalformed)
	}

	allocHint := getUint32(body[0:4])
	contextID := getUint16(body[4:6])
	cancelCount := body[6]
	status := getUint32(body[8:12])

	return &Fault{
		Header:      header,
		AllocHint:   allocHint,
		ContextID:   contextID,
		CancelCount: cancelCount,
		Status:      status,
		StubData:    body[12:],
	}, nil
}
