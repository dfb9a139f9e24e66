package ndr

import "testing"

func TestUnionRoundTrip(t *testing.T) {
	body := []byte{1, 2, 3, 4, 5, 6}
	encoded := EncodeUnion(7, body)

	discriminant, gotBody, err := DecodeUnion(encoded)
	if err != nil {
		t.Fatalf("DecodeUnion error: %v", err)
	}
	if discriminant != 7 {
		t.Errorf("discriminant = %d, want 7", discriminant)
	}
	if string(gotBody) != string(body) {
		t.Errorf("body = %v, want %v", gotBody, body)
	}
}

func TestDecodeUnionTruncated(t *testing.T) {
	if _, _, err := DecodeUnion([]byte{1, 2}); err == nil {
		t.Fatal("expected error for truncated union")
	}
}
