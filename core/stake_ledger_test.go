package core

import "testing"

func TestStakeLedgerMonotonic(t *testing.T) {
	s := NewStakeLedger()
	s.AddStake("x", 10)
	s.AddStake("x", 5)
	if got := s.GetBalance("x"); got != 15 {
		t.Fatalf("stake = %d, want 15", got)
	}
}

func TestStakeLedgerUpdateFloorsAmount(t *testing.T) {
	s := NewStakeLedger()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx, _ := BuildTransaction(w, "0", 12.9, KindStake)
	s.Update(tx)
	if got := s.GetBalance(w.PublicKey()); got != 12 {
		t.Fatalf("stake = %d, want floor(12.9) = 12", got)
	}
}
