package core

import "testing"

func TestGenesisBlockFixed(t *testing.T) {
	g1 := GenesisBlock()
	g2 := GenesisBlock()
	if g1.Hash != g2.Hash {
		t.Fatalf("genesis hash not stable across calls: %s != %s", g1.Hash, g2.Hash)
	}
}

func TestGenesisBlockFields(t *testing.T) {
	g := GenesisBlock()
	if g.ID != 0 {
		t.Fatalf("genesis id = %d, want 0", g.ID)
	}
	if g.PreviousHash != "genesis" {
		t.Fatalf("genesis previous_hash = %q", g.PreviousHash)
	}
	if g.Validator != "genesis" || g.Signature != "genesis" {
		t.Fatalf("genesis validator/signature mismatch")
	}
	if g.Difficulty != 5 {
		t.Fatalf("genesis difficulty = %d, want 5", g.Difficulty)
	}
	if g.Timestamp != 1650205976 {
		t.Fatalf("genesis timestamp = %d, want 1650205976", g.Timestamp)
	}
	if len(g.Txns) != 0 {
		t.Fatalf("genesis txns not empty")
	}
	if !g.SameGenesis() {
		t.Fatalf("genesis block does not match its own equality rule")
	}
}

func TestNewBlockSignatureRoundTrip(t *testing.T) {
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	g := GenesisBlock()
	b, err := NewBlock(1, g.Hash, 1700000000, nil, 5, w)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	if !b.VerifySignature() {
		t.Fatalf("freshly built block does not verify")
	}
	if b.Validator != w.PublicKey() {
		t.Fatalf("validator = %s, want %s", b.Validator, w.PublicKey())
	}

	tampered := b
	tampered.Difficulty++
	if tampered.VerifySignature() {
		t.Fatalf("tampering with difficulty should invalidate the block")
	}

	forged := b
	forged.Signature = "00"
	if forged.VerifySignature() {
		t.Fatalf("malformed signature should not verify")
	}
}
