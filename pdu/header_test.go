package pdu

import "testing"

func TestCommonHeaderRoundTrip(t *testing.T) {
	h := CommonHeader{
		MajorVersion: MajorVersion,
		MinorVersion: MinorVersion,
		Type:         TypeBind,
		Flags:        DefaultFlags,
		DRep:         DefaultDataRepresentation,
		FragLength:   72,
		AuthLength:   0,
		CallID:       1,
	}
	b := make([]byte, CommonHeaderLength)
	h.Encode(b)

	got, err := DecodeCommonHeader(b)
	if err != nil {
		t.Fatalf("DecodeCommonHeader error: %v", err)
	}
	if got != h {
		t.Errorf("got %+v, want %+v", got, h)
	}
}

func TestDecodeCommonHeaderUnknownType(t *testing.T) {
	h := CommonHeader{Type: Type(99), DRep: DefaultDataRepresentation}
	b := make([]byte, CommonHeaderLength)
	h.Encode(b)
	if _, err := DecodeCommonHeader(b); err == nil {
		t.Fatal("expected error for unknown PDU type")
	}
}

func TestDecodeCommonHeaderTruncated(t *testing.T) {
	if _, err := DecodeCommonHeader(make([]byte, 10)); err == nil {
		t.Fatal("expected error for truncated header")
	}
}
