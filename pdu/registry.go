package pdu

import "fmt"

// bodyDecoder decodes a full PDU (header included) of a specific type.
type bodyDecoder func([]byte) (PDU, error)

// registry maps a PDU type byte to its body decoder, the closed tagged
// variant this core uses instead of class-registration dynamic dispatch:
// each entry only knows how to parse its own body.
var registry = map[Type]bodyDecoder{
	TypeBind:     func(b []byte) (PDU, error) { return DecodeBind(b) },
	TypeBindAck:  func(b []byte) (PDU, error) { return DecodeBindAck(b) },
	TypeRequest:  func(b []byte) (PDU, error) { return DecodeRequest(b) },
	TypeResponse: func(b []byte) (PDU, error) { return DecodeResponse(b) },
	TypeFault:    func(b []byte) (PDU, error) { return DecodeFault(b) },
}

// Decode reads the common header from b to determine the PDU type, then
// dispatches to that type's body decoder. Unknown PDU types surface as
// ErrMalformed from DecodeCommonHeader before the registry is even
// consulted.
func Decode(b []byte) (PDU, error) {
	header, err := DecodeCommonHeader(b)
	if err != nil {
		return nil, err
	}

	decode, ok := registry[header.Type]
	if !ok {
		return nil, fmt.Errorf("%w: no decoder registered for PDU type %s", ErrMalformed, header.Type)
	}
	return decode(b)
}
