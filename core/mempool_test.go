package core

import "testing"

func TestMempoolDedup(t *testing.T) {
	m := NewMempool()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx, _ := BuildTransaction(w, "0", 1, KindTransaction)
	if m.Exists(tx) {
		t.Fatalf("mempool should start empty")
	}
	m.Add(tx)
	if !m.Exists(tx) {
		t.Fatalf("mempool should report the added transaction as existing")
	}
}

func TestMempoolDrainValidFiltersBadSignatures(t *testing.T) {
	m := NewMempool()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	good, _ := BuildTransaction(w, "0", 1, KindTransaction)
	bad, _ := BuildTransaction(w, "0", 2, KindTransaction)
	bad.Input.Signature = "00"

	m.Add(good)
	m.Add(bad)

	drained := m.DrainValid()
	if len(drained) != 1 || drained[0].ID != good.ID {
		t.Fatalf("DrainValid should keep only the signature-valid transaction")
	}
	if m.Len() != 0 {
		t.Fatalf("DrainValid should empty the mempool")
	}
}

func TestMempoolClear(t *testing.T) {
	m := NewMempool()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx, _ := BuildTransaction(w, "0", 1, KindTransaction)
	m.Add(tx)
	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("mempool should be empty after Clear")
	}
}
