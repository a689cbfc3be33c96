package core

import "testing"

func TestNewWalletPublicKeyFormat(t *testing.T) {
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	if len(w.PublicKey()) != 64 {
		t.Fatalf("public key len = %d, want 64", len(w.PublicKey()))
	}
}

func TestKeypairHexRoundTrip(t *testing.T) {
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	hexKey := w.KeypairHex()
	if len(hexKey) != 128 {
		t.Fatalf("keypair hex len = %d, want 128", len(hexKey))
	}

	w2, err := FromKeypairHex(hexKey)
	if err != nil {
		t.Fatalf("FromKeypairHex: %v", err)
	}
	if w2.PublicKey() != w.PublicKey() {
		t.Fatalf("public key mismatch after round-trip: %s != %s", w2.PublicKey(), w.PublicKey())
	}

	msg := "hello posnet"
	sig := w.Sign(msg)
	if !Verify(w2.PublicKey(), msg, sig) {
		t.Fatalf("signature produced by original wallet does not verify against round-tripped key")
	}
}

func TestSignVerify(t *testing.T) {
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	msg := `{"to":"0","amount":10,"fee":1}`
	sig := w.Sign(msg)
	if !Verify(w.PublicKey(), msg, sig) {
		t.Fatalf("valid signature did not verify")
	}
	if Verify(w.PublicKey(), msg+"x", sig) {
		t.Fatalf("signature verified against tampered message")
	}
	if Verify(w.PublicKey(), msg, "00") {
		t.Fatalf("malformed signature unexpectedly verified")
	}
}
