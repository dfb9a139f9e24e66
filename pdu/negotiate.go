package pdu

import (
	"encoding/binary"
	"fmt"
)

// ContextNegotiationResult is one element of a BindAck's ResultList: the
// outcome of negotiating a single presentation context. TransferSyntax is
// present if and only if Result == ResultAcceptance; in every other case
// it contributes zero bytes to the wire encoding.
type ContextNegotiationResult struct {
	Result         ResultCode
	Reason         ReasonCode
	TransferSyntax *PresentationSyntax
}

// EncodedLength is 4 bytes when rejected, 24 bytes when accepted.
func (r ContextNegotiationResult) EncodedLength() int {
	if r.Result == ResultAcceptance {
		return 4 + PresentationSyntaxLength
	}
	return 4
}

// Encode marshals the negotiation result.
func (r ContextNegotiationResult) Encode() []byte {
	b := make([]byte, r.EncodedLength())
	binary.LittleEndian.PutUint16(b[0:2], uint16(r.Result))
	binary.LittleEndian.PutUint16(b[2:4], uint16(r.Reason))
	if r.Result == ResultAcceptance && r.TransferSyntax != nil {
		copy(b[4:], r.TransferSyntax.Encode())
	}
	return b
}

// DecodeContextNegotiationResult reads one result from the leading bytes
// of b, returning the bytes consumed.
func DecodeContextNegotiationResult(b []byte) (ContextNegotiationResult, int, error) {
	if len(b) < 4 {
		return ContextNegotiationResult{}, 0, fmt.Errorf("%w: context negotiation result header: need 4 bytes, got %d", ErrMalformed, len(b))
	}
	result := ResultCode(binary.LittleEndian.Uint16(b[0:2]))
	reason := ReasonCode(binary.LittleEndian.Uint16(b[2:4]))

	if result != ResultAcceptance {
		return ContextNegotiationResult{Result: result, Reason: reason}, 4, nil
	}

	ts, n, err := DecodePresentationSyntax(b[4:])
	if err != nil {
		return ContextNegotiationResult{}, 0, err
	}
	return ContextNegotiationResult{Result: result, Reason: reason, TransferSyntax: &ts}, 4 + n, nil
}

// ResultList is the u8-count, 3-reserved-byte-padded list of negotiation
// results carried in a BindAck PDU.
type ResultList []ContextNegotiationResult

// EncodedLength returns 4 (header) plus the sum of each result's size.
func (l ResultList) EncodedLength() int {
	total := 4
	for _, r := range l {
		total += r.EncodedLength()
	}
	return total
}

// Encode marshals the result list.
func (l ResultList) Encode() []byte {
	b := make([]byte, 4, l.EncodedLength())
	b[0] = uint8(len(l))
	for _, r := range l {
		b = append(b, r.Encode()...)
	}
	return b
}

// DecodeResultList reads a ResultList from the leading bytes of b,
// returning the bytes consumed.
func DecodeResultList(b []byte) (ResultList, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: result list header: need 4 bytes, got %d", ErrMalformed, len(b))
	}
	count := int(b[0])
	off := 4

	list := make(ResultList, count)
	for i := 0; i < count; i++ {
		res, n, err := DecodeContextNegotiationResult(b[off:])
		if err != nil {
			return nil, 0, err
		}
		list[i] = res
		off += n
	}
	return list, off, nil
}
