package core

import "testing"

func TestValidatorSetUpdateAcceptsAboveThreshold(t *testing.T) {
	v := NewValidatorSet()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx, _ := BuildTransaction(w, "0", 25, KindValidator)
	if !v.Update(tx) {
		t.Fatalf("25 to \"0\" should register as a validator")
	}
	accounts := v.Accounts()
	if len(accounts) != 1 || accounts[0] != w.PublicKey() {
		t.Fatalf("validator set should contain exactly the registered sender")
	}
}

func TestValidatorSetUpdateRejectsBelowThresholdOrWrongSink(t *testing.T) {
	v := NewValidatorSet()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	belowAmount, _ := BuildTransaction(w, "0", 24.99, KindValidator)
	if v.Update(belowAmount) {
		t.Fatalf("amount below MinValidatorStake should be rejected")
	}
	wrongSink, _ := BuildTransaction(w, w.PublicKey(), 100, KindValidator)
	if v.Update(wrongSink) {
		t.Fatalf("output.to != \"0\" should be rejected")
	}
	if len(v.Accounts()) != 0 {
		t.Fatalf("no rejected registration should appear in the validator set")
	}
}

func TestValidatorSetAllowsDuplicates(t *testing.T) {
	v := NewValidatorSet()
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx, _ := BuildTransaction(w, "0", 30, KindValidator)
	v.Update(tx)
	v.Update(tx)
	if len(v.Accounts()) != 2 {
		t.Fatalf("duplicate registration should append again, got %d entries", len(v.Accounts()))
	}
}
