package protocol

import "testing"

func TestEncodeDecodePurchase(t *testing.T) {
	b, err := Encode(MsgPurchase, Purchase{Seq: 7, Upgrade: "infirmary"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgPurchase {
		t.Fatalf("type = %q, want %q", env.T, MsgPurchase)
	}
	p, err := DecodePayload[Purchase](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.Seq != 7 || p.Upgrade != "infirmary" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestEncodeRejectsEmpty(t *testing.T) {
	if _, err := Encode("", Hello{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
	if _, err := Encode(MsgHello, nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
}

func TestDecodeRejectsEmpty(t *testing.T) {
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("expected error for empty message")
	}
	if _, err := DecodePayload[Hello](Envelope{T: MsgHello}); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
