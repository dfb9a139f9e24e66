package pdu

import "testing"

func TestContextNegotiationResultUserRejectionIsFourBytes(t *testing.T) {
	r := ContextNegotiationResult{Result: ResultUserRejection, Reason: ReasonAbstractSyntaxNotSupported}
	encoded := r.Encode()
	if len(encoded) != 4 {
		t.Fatalf("len(encoded) = %d, want 4", len(encoded))
	}

	got, consumed, err := DecodeContextNegotiationResult(encoded)
	if err != nil {
		t.Fatalf("DecodeContextNegotiationResult error: %v", err)
	}
	if consumed != 4 {
		t.Errorf("consumed = %d, want 4", consumed)
	}
	if got.TransferSyntax != nil {
		t.Error("expected nil TransferSyntax on rejection")
	}
}

func TestContextNegotiationResultAcceptanceRoundTrip(t *testing.T) {
	uuid, err := ParseUUID("8a885d04-1ceb-11c9-9fe8-08002b104860")
	if err != nil {
		t.Fatalf("ParseUUID error: %v", err)
	}
	ts := PresentationSyntax{UUID: uuid, Version: 2}
	r := ContextNegotiationResult{Result: ResultAcceptance, Reason: ReasonNotSpecified, TransferSyntax: &ts}
	encoded := r.Encode()
	if len(encoded) != 24 {
		t.Fatalf("len(encoded) = %d, want 24", len(encoded))
	}

	got, consumed, err := DecodeContextNegotiationResult(encoded)
	if err != nil {
		t.Fatalf("DecodeContextNegotiationResult error: %v", err)
	}
	if consumed != 24 {
		t.Errorf("consumed = %d, want 24", consumed)
	}
	if got.TransferSyntax == nil || *got.TransferSyntax != ts {
		t.Errorf("TransferSyntax = %+v, want %+v", got.TransferSyntax, ts)
	}
}
