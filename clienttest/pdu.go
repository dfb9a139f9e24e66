package clienttest

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/mellowdrifter/dcerpc/pdu"
)

// ReadNextPDU reads one complete PDU off conn, framed by the common
// header's fragment_length field, and returns its declared type and the
// full raw encoded bytes.
func ReadNextPDU(conn net.Conn) (pdu.Type, []byte, error) {
	header := make([]byte, pdu.CommonHeaderLength)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, fmt.Errorf("reading PDU header: %w", err)
	}

	fragLen := binary.LittleEndian.Uint16(header[8:10])
	if fragLen < pdu.CommonHeaderLength {
		return 0, nil, fmt.Errorf("invalid frag_length: %d", fragLen)
	}

	body := make([]byte, fragLen-pdu.CommonHeaderLength)
	if len(body) > 0 {
		if _, err := io.ReadFull(conn, body); err != nil {
			return 0, nil, fmt.Errorf("reading PDU body: %w", err)
		}
	}

	return pdu.Type(header[2]), append(header, body...), nil
}

// BuildGarbagePDU returns bytes whose header names an unknown PDU type,
// the way a confused peer's reply would decode.
func BuildGarbagePDU() []byte {
	b := make([]byte, pdu.CommonHeaderLength)
	b[0] = pdu.MajorVersion
	b[1] = pdu.MinorVersion
	b[2] = 200 // unknown PDU type
	b[3] = byte(pdu.DefaultFlags)
	binary.LittleEndian.PutUint16(b[8:10], pdu.CommonHeaderLength)
	return b
}

// BuildTruncatedFragmentResponse encodes a Response PDU with the
// LAST_FRAG flag cleared, exercising the single-fragment-only invariant:
// this core rejects any PDU that doesn't carry both FIRST_FRAG and
// LAST_FRAG.
func BuildTruncatedFragmentResponse(contextID uint16, callID uint32, stub []byte) ([]byte, error) {
	resp := pdu.NewResponse(contextID, stub)
	resp.Header.CallID = callID
	resp.Header.Flags = pdu.FlagFirstFrag
	return resp.Encode()
}
