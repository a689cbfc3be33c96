package core

import "testing"

func TestSeedGenesisStateMatchesBootstrapConstants(t *testing.T) {
	bc := NewBlockchain(nil)
	for i, addr := range BootstrapAddresses {
		if got := bc.BalanceOf(addr); got != BootstrapBalance {
			t.Fatalf("bootstrap balance[%d] = %v, want %v", i, got, BootstrapBalance)
		}
		if got := bc.StakeOf(addr); got != BootstrapStakes[i] {
			t.Fatalf("bootstrap stake[%d] = %d, want %d", i, got, BootstrapStakes[i])
		}
	}
	accounts := bc.validators.Accounts()
	if len(accounts) != 2 || accounts[0] != BootstrapAddresses[0] || accounts[1] != BootstrapAddresses[1] {
		t.Fatalf("bootstrap validator set mismatch: %v", accounts)
	}
}

// TestReplayDeterminism covers T7: replaying the same chain on two fresh
// nodes yields byte-identical ledger state.
func TestReplayDeterminism(t *testing.T) {
	validator := newTestWallet(t)
	prevHash := GenesisBlock().Hash

	sender := newTestWallet(t)
	recipient := newTestWallet(t)

	tx1 := mustBuild(t, sender, recipient.PublicKey(), 10, KindTransaction)
	filler := mustBuild(t, validator, "0", 1, KindTransaction)
	blk, err := NewBlock(1, prevHash, 1700000000, []Transaction{tx1, filler}, 5, validator)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}

	replicaA := NewBlockchain(newTestWallet(t))
	replicaB := NewBlockchain(newTestWallet(t))
	replicaA.accounts.Increment(sender.PublicKey(), 500)
	replicaB.accounts.Increment(sender.PublicKey(), 500)

	replicaA.executeBlockLocked(blk)
	replicaB.executeBlockLocked(blk)

	if replicaA.BalanceOf(sender.PublicKey()) != replicaB.BalanceOf(sender.PublicKey()) {
		t.Fatalf("replay diverged on sender balance")
	}
	if replicaA.BalanceOf(recipient.PublicKey()) != replicaB.BalanceOf(recipient.PublicKey()) {
		t.Fatalf("replay diverged on recipient balance")
	}
	if replicaA.BalanceOf(validator.PublicKey()) != replicaB.BalanceOf(validator.PublicKey()) {
		t.Fatalf("replay diverged on validator balance")
	}
}
