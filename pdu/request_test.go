package pdu

import "testing"

func TestRequestRoundTripNoAuthNoUUID(t *testing.T) {
	stub := []byte{1, 2, 3, 4, 5}
	r := NewRequest(0, 15, stub)
	r.Header.CallID = 1

	encoded, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	got, err := DecodeRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeRequest error: %v", err)
	}
	if got.ObjectUUID != nil {
		t.Error("expected nil ObjectUUID")
	}
	if string(got.StubData) != string(stub) {
		t.Errorf("StubData = %v, want %v", got.StubData, stub)
	}
	if got.Header.Flags.Has(FlagObjectUUID) {
		t.Error("FlagObjectUUID should not be set")
	}
}

func TestRequestWithObjectUUIDStubOffset(t *testing.T) {
	uuid, err := ParseUUID("99fcfec4-5260-101b-bbcb-00aa0021347a")
	if err != nil {
		t.Fatalf("ParseUUID error: %v", err)
	}
	stub := []byte{0xAA, 0xBB, 0xCC}
	r := NewRequest(0, 1, stub)
	r.ObjectUUID = &uuid
	r.Header.CallID = 1

	encoded, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	got, err := DecodeRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeRequest error: %v", err)
	}
	if got.ObjectUUID == nil || *got.ObjectUUID != uuid {
		t.Errorf("ObjectUUID = %v, want %v", got.ObjectUUID, uuid)
	}
	if string(got.StubData) != string(stub) {
		t.Errorf("StubData = %v, want %v", got.StubData, stub)
	}
	if !got.Header.Flags.Has(FlagObjectUUID) {
		t.Error("FlagObjectUUID should be set")
	}

	// body = alloc_hint(4)+context_id(2)+opnum(2)+uuid(16) = 24 bytes before stub.
	body := encoded[CommonHeaderLength:]
	const objectUUIDStubOffset = 24
	if string(body[objectUUIDStubOffset:objectUUIDStubOffset+len(stub)]) != string(stub) {
		t.Errorf("stub does not begin at body offset %d", objectUUIDStubOffset)
	}
}

func TestRequestAuthLengthZeroConsumesAllRemainingAsStub(t *testing.T) {
	stub := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r := NewRequest(0, 1, stub)
	r.Header.CallID = 1

	encoded, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	got, err := DecodeRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeRequest error: %v", err)
	}
	if len(got.AuthVerifier) != 0 {
		t.Errorf("AuthVerifier = %v, want empty", got.AuthVerifier)
	}
	if string(got.StubData) != string(stub) {
		t.Errorf("StubData = %v, want %v", got.StubData, stub)
	}
}

func TestRequestWithAuthVerifierSplitsStubCorrectly(t *testing.T) {
	stub := []byte{1, 2, 3, 4}
	verifier := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	r := NewRequest(0, 1, stub)
	r.Header.CallID = 1
	r.AuthVerifier = verifier

	encoded, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	got, err := DecodeRequest(encoded)
	if err != nil {
		t.Fatalf("DecodeRequest error: %v", err)
	}
	if string(got.StubData) != string(stub) {
		t.Errorf("StubData = %v, want %v", got.StubData, stub)
	}
	if string(got.AuthVerifier) != string(verifier) {
		t.Errorf("AuthVerifier = %v, want %v", got.AuthVerifier, verifier)
	}
}

func TestRequestEncodeRequiresVerifierWhenAuthLengthDeclared(t *testing.T) {
	r := NewRequest(0, 1, nil)
	r.Header.AuthLength = 4
	if _, err := r.Encode(); err == nil {
		t.Fatal("expected ErrAuthVerifierRequired")
	}
}
