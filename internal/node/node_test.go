package node

import (
	"bytes"
	"strings"
	"testing"

	"posnet/core"
)

func newTestNode(t *testing.T) (*Node, *core.Blockchain, *bytes.Buffer) {
	t.Helper()
	wallet, err := core.NewWallet()
	if err != nil {
		t.Fatalf("NewWallet: %v", err)
	}
	bc := core.NewBlockchain(wallet)
	out := &bytes.Buffer{}
	n := New(bc, nil, strings.NewReader(""), out)
	return n, bc, out
}

func TestHandleCommandLsWallet(t *testing.T) {
	n, bc, out := newTestNode(t)
	n.handleCommand("ls wallet")
	if got := strings.TrimSpace(out.String()); got != bc.Wallet().KeypairHex() {
		t.Fatalf("ls wallet = %q, want %q", got, bc.Wallet().KeypairHex())
	}
}

func TestHandleCommandCreateWalletReplacesNodeWallet(t *testing.T) {
	n, bc, out := newTestNode(t)
	original := bc.Wallet().PublicKey()

	n.handleCommand("create wallet")

	if bc.Wallet().PublicKey() == original {
		t.Fatalf("create wallet should replace the blockchain's active wallet")
	}
	if strings.TrimSpace(out.String()) != bc.Wallet().KeypairHex() {
		t.Fatalf("create wallet should print the new keypair hex")
	}
}

func TestHandleCommandLsValidatorAndStakesEmpty(t *testing.T) {
	n, _, out := newTestNode(t)
	n.handleCommand("ls validator")
	n.handleCommand("ls stakes")
	if out.Len() == 0 {
		t.Fatalf("ls stakes should print something even at zero balance")
	}
}

func TestHandleCommandUnrecognized(t *testing.T) {
	n, _, out := newTestNode(t)
	n.handleCommand("not a real command")
	if !strings.Contains(out.String(), "unrecognized command") {
		t.Fatalf("expected unrecognized command message, got %q", out.String())
	}
}

func TestAdoptBestSyncVoteIgnoresEqualLengthChain(t *testing.T) {
	n, bc, _ := newTestNode(t)

	short := []core.Block{core.GenesisBlock()}
	n.syncVotes = [][]core.Block{short}
	n.adoptBestSyncVote()

	if len(bc.Chain()) != 1 {
		t.Fatalf("equal-length candidate should not replace the local chain")
	}
	if n.syncVotes != nil {
		t.Fatalf("adoptBestSyncVote should clear syncVotes")
	}
}
