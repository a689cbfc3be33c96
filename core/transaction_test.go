package core

import "testing"

// TestBuildVerifyRoundTrip covers T4.
func TestBuildVerifyRoundTrip(t *testing.T) {
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx, err := BuildTransaction(w, "0", 42, KindStake)
	if err != nil {
		t.Fatalf("BuildTransaction: %v", err)
	}
	if !VerifyTransaction(tx) {
		t.Fatalf("freshly built transaction does not verify")
	}
	if tx.Output.Fee != TransactionFee {
		t.Fatalf("fee = %v, want flat fee %v", tx.Output.Fee, TransactionFee)
	}

	flipSignature := tx
	flipSignature.Input.Signature = "00" + flipSignature.Input.Signature[2:]
	if VerifyTransaction(flipSignature) {
		t.Fatalf("tampered signature should not verify")
	}

	flipTo := tx
	flipTo.Output.To = "1"
	if VerifyTransaction(flipTo) {
		t.Fatalf("tampered output.to should not verify")
	}

	flipAmount := tx
	flipAmount.Output.Amount++
	if VerifyTransaction(flipAmount) {
		t.Fatalf("tampered output.amount should not verify")
	}

	flipFee := tx
	flipFee.Output.Fee++
	if VerifyTransaction(flipFee) {
		t.Fatalf("tampered output.fee should not verify")
	}
}

func TestBuildTransactionFreshIDOnReplay(t *testing.T) {
	w, err := NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	tx1, _ := BuildTransaction(w, "0", 10, KindTransaction)
	tx2, _ := BuildTransaction(w, "0", 10, KindTransaction)
	if tx1.ID == tx2.ID {
		t.Fatalf("two builds with identical sender/output produced the same id")
	}
	if tx1.Input.Signature != tx2.Input.Signature {
		t.Fatalf("identical outputs should produce identical signatures (only the output is signed, not kind/id/timestamp)")
	}
}
