package pdu

import (
	"encoding/binary"
	"fmt"
)

// ContextElement negotiates one (abstract syntax, transfer syntax...)
// presentation context.
type ContextElement struct {
	ContextID       uint16
	AbstractSyntax  PresentationSyntax
	TransferSyntax []PresentationSyntax
}

// EncodedLength returns the exact wire size of this element: 2 (context
// id) + 1 (count) + 1 (reserved) + 20 (abstract syntax) + 20 per transfer
// syntax.
func (c ContextElement) EncodedLength() int {
	return 4 + PresentationSyntaxLength + len(c.TransferSyntax)*PresentationSyntaxLength
}

// Encode marshals the context element.
func (c ContextElement) Encode() []byte {
	b := make([]byte, c.EncodedLength())
	binary.LittleEndian.PutUint16(b[0:2], c.ContextID)
	b[2] = uint8(len(c.TransferSyntax))
	b[3] = 0 // reserved

	off := 4
	copy(b[off:off+PresentationSyntaxLength], c.AbstractSyntax.Encode())
	off += PresentationSyntaxLength

	for _, ts := range c.TransferSyntax {
		copy(b[off:off+PresentationSyntaxLength], ts.Encode())
		off += PresentationSyntaxLength
	}
	return b
}

// DecodeContextElement reads one ContextElement from the leading bytes of
// b, returning the bytes consumed.
func DecodeContextElement(b []byte) (ContextElement, int, error) {
	if len(b) < 4 {
		return ContextElement{}, 0, fmt.Errorf("%w: context element header: need 4 bytes, got %d", ErrMalformed, len(b))
	}
	contextID := binary.LittleEndian.Uint16(b[0:2])
	count := int(b[2])
	// b[3] reserved, ignored.

	off := 4
	abstract, n, err := DecodePresentationSyntax(b[off:])
	if err != nil {
		return ContextElement{}, 0, err
	}
	off += n

	transfers := make([]PresentationSyntax, count)
	for i := 0; i < count; i++ {
		ts, n, err := DecodePresentationSyntax(b[off:])
		if err != nil {
			return ContextElement{}, 0, err
		}
		transfers[i] = ts
		off += n
	}

	return ContextElement{
		ContextID:      contextID,
		AbstractSyntax: abstract,
		TransferSyntax: transfers,
	}, off, nil
}

// ContextList is the u8-count, 3-reserved-byte-padded list of context
// elements carried in a Bind PDU.
type ContextList []ContextElement

// EncodedLength returns 4 (header) plus the sum of each element's size.
func (l ContextList) EncodedLength() int {
	total := 4
	for _, c := range l {
		total += c.EncodedLength()
	}
	return total
}

// Encode marshals the context list.
func (l ContextList) Encode() []byte {
	b := make([]byte, 4, l.EncodedLength())
	b[0] = uint8(len(l))
	// b[1:4] reserved, zero.
	for _, c := range l {
		b = append(b, c.Encode()...)
	}
	return b
}

// DecodeContextList reads a ContextList from the leading bytes of b,
// returning the bytes consumed.
func DecodeContextList(b []byte) (ContextList, int, error) {
	if len(b) < 4 {
		return nil, 0, fmt.Errorf("%w: context list header: need 4 bytes, got %d", ErrMalformed, len(b))
	}
	count := int(b[0])
	off := 4

	list := make(ContextList, count)
	for i := 0; i < count; i++ {
		elem, n, err := DecodeContextElement(b[off:])
		if err != nil {
			return nil, 0, err
		}
		list[i] = elem
		off += n
	}
	return list, off, nil
}
