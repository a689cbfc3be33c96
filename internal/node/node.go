// Package node drives the single-threaded cooperative event loop that ties
// the consensus core, the gossip transport, and the operator terminal
// together. It owns no consensus logic of its own: every decision about
// whether a block or transaction is valid is delegated to core.Blockchain.
package node

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"posnet/core"
	"posnet/internal/gossip"
)

// State is the node's position in the Booting -> Syncing -> Active
// lifecycle described by the network's bootstrap protocol.
type State int

const (
	StateBooting State = iota
	StateSyncing
	StateActive
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateSyncing:
		return "syncing"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// mineInterval is how often the event loop attempts the PoS lottery.
const mineInterval = 1 * time.Second

// syncGrace is how long a freshly-booted node waits for chain responses
// before it gives up waiting for peers and goes active on its own chain.
const syncGrace = 3 * time.Second

// Node wires a core.Blockchain to a gossip.Transport and an operator
// terminal, and runs the select loop that is the program's main loop.
type Node struct {
	bc        *core.Blockchain
	transport *gossip.Transport
	in        *bufio.Scanner
	out       io.Writer
	log       *log.Logger

	state      State
	syncVotes  [][]core.Block
	requestSeq int
}

// New builds a Node. in/out are the operator terminal; pass os.Stdin and
// os.Stdout in production and pipes in tests.
func New(bc *core.Blockchain, transport *gossip.Transport, in io.Reader, out io.Writer) *Node {
	return &Node{
		bc:        bc,
		transport: transport,
		in:        bufio.NewScanner(in),
		out:       out,
		log:       log.StandardLogger(),
		state:     StateBooting,
	}
}

// Run subscribes to the network, requests a chain sync, and then blocks
// running the cooperative event loop until ctx is cancelled. Exactly one of
// (operator input, mining tick, inbound gossip message) is handled per loop
// iteration; inbound gossip is delivered on transport.Inbox(), which is fed
// by per-topic goroutines that do nothing but decode-and-forward, so this
// select loop is the only goroutine that ever mutates the Blockchain.
func (n *Node) Run(ctx context.Context) error {
	if err := n.transport.Subscribe(ctx, topicBlocks); err != nil {
		return fmt.Errorf("node: subscribe blocks: %w", err)
	}
	if err := n.transport.Subscribe(ctx, topicTransactions); err != nil {
		return fmt.Errorf("node: subscribe transactions: %w", err)
	}
	if err := n.transport.Subscribe(ctx, topicChains); err != nil {
		return fmt.Errorf("node: subscribe chains: %w", err)
	}

	n.state = StateSyncing
	n.log.Info("node: requesting chain from peers")
	n.requestChainSync()

	syncTimer := time.NewTimer(syncGrace)
	defer syncTimer.Stop()
	mineTicker := time.NewTicker(mineInterval)
	defer mineTicker.Stop()

	lines := make(chan string)
	go n.readLines(lines)

	inbox := n.transport.Inbox()

	for {
		select {
		case <-ctx.Done():
			n.log.Info("node: shutting down")
			return ctx.Err()

		case <-syncTimer.C:
			if n.state == StateSyncing {
				n.adoptBestSyncVote()
				n.state = StateActive
				n.log.Info("node: active")
			}

		case <-mineTicker.C:
			if n.state != StateActive {
				continue
			}
			n.tryMine()

		case msg := <-inbox:
			n.handleInbound(msg)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			n.handleCommand(line)
		}
	}
}

func (n *Node) handleInbound(msg gossip.Message) {
	switch msg.Topic {
	case topicBlocks:
		n.handleBlockMessage(msg.Data, msg.From)
	case topicTransactions:
		n.handleTransactionMessage(msg.Data, msg.From)
	case topicChains:
		n.handleChainMessage(msg.Data, msg.From)
	}
}

func (n *Node) readLines(out chan<- string) {
	defer close(out)
	for n.in.Scan() {
		out <- n.in.Text()
	}
}

func (n *Node) tryMine() {
	block, mined := n.bc.MineBlockByStake()
	if !mined {
		return
	}
	if !n.bc.IsValidBlock(block) {
		n.log.Warnf("node: self-mined block %d rejected by own validity check", block.ID)
		return
	}
	n.log.Infof("node: mined block %d with %d txns", block.ID, len(block.Txns))
	n.broadcastBlock(block)
}

func (n *Node) broadcastBlock(b core.Block) {
	data, err := encodeBlock(b)
	if err != nil {
		n.log.Errorf("node: encode block: %v", err)
		return
	}
	if err := n.transport.Broadcast(topicBlocks, data); err != nil {
		n.log.Errorf("node: broadcast block: %v", err)
	}
}

func (n *Node) broadcastTransaction(tx core.Transaction) {
	data, err := encodeTransaction(tx)
	if err != nil {
		n.log.Errorf("node: encode transaction: %v", err)
		return
	}
	if err := n.transport.Broadcast(topicTransactions, data); err != nil {
		n.log.Errorf("node: broadcast transaction: %v", err)
	}
}

// requestChainSync addresses one chain request to each currently known
// peer. The request's PeerID names the peer that should answer it, so a
// node only ever answers a request addressed to itself
// (handleChainMessage's kindChainRequest branch), even though every peer
// observes every request on the shared topic.
func (n *Node) requestChainSync() {
	peers := n.transport.Peers()
	if len(peers) == 0 {
		n.log.Info("node: no known peers yet, skipping chain sync request")
		return
	}
	for _, p := range peers {
		n.requestSeq++
		data, err := encodeChainRequest(strconv.Itoa(n.requestSeq), p)
		if err != nil {
			n.log.Errorf("node: encode chain request: %v", err)
			continue
		}
		if err := n.transport.Broadcast(topicChains, data); err != nil {
			n.log.Errorf("node: broadcast chain request: %v", err)
		}
	}
}

// adoptBestSyncVote replaces the local chain with the longest candidate
// chain heard from peers during the syncing window, if any is longer than
// what we already have. ReplaceChain still runs the chain's own validity
// checks, so a malformed or shorter candidate is simply ignored.
func (n *Node) adoptBestSyncVote() {
	var best []core.Block
	for _, candidate := range n.syncVotes {
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	n.syncVotes = nil
	if len(best) <= len(n.bc.Chain()) {
		return
	}
	if n.bc.ReplaceChain(best) {
		n.log.Infof("node: synced chain of height %d from peers", len(best))
	}
}

func (n *Node) handleBlockMessage(data []byte, _ string) {
	var msg blockMessage
	if err := decodeInto(data, &msg); err != nil {
		n.log.Debugf("node: malformed block message: %v", err)
		return
	}
	if n.bc.IsValidBlock(msg.Block) {
		n.log.Infof("node: accepted gossiped block %d", msg.Block.ID)
		n.broadcastBlock(msg.Block)
	}
}

func (n *Node) handleTransactionMessage(data []byte, _ string) {
	var msg transactionMessage
	if err := decodeInto(data, &msg); err != nil {
		n.log.Debugf("node: malformed transaction message: %v", err)
		return
	}
	if err := n.bc.AdmitTransaction(msg.Transaction); err == nil {
		n.broadcastTransaction(msg.Transaction)
	}
}

// handleChainMessage enforces the addressed-request/addressed-response
// filter: a request is only answered when it names this node's own peer id,
// and the response is addressed back to the requester (from, the gossip
// layer's sender id) rather than to this node itself. Symmetrically, a
// response is only consumed when it names this node's own peer id, whether
// it is accumulated as a sync vote or applied directly via ReplaceChain.
func (n *Node) handleChainMessage(data []byte, from string) {
	kind, err := peekKind(data)
	if err != nil {
		n.log.Debugf("node: malformed chain message: %v", err)
		return
	}
	switch kind {
	case kindChainRequest:
		var req chainRequestMessage
		if err := decodeInto(data, &req); err != nil {
			return
		}
		if req.PeerID != n.transport.PeerID() {
			return
		}
		resp, err := encodeChainResponse(req.RequestID, from, n.bc.Chain())
		if err != nil {
			n.log.Errorf("node: encode chain response: %v", err)
			return
		}
		if err := n.transport.Broadcast(topicChains, resp); err != nil {
			n.log.Errorf("node: broadcast chain response: %v", err)
		}

	case kindChainResponse:
		var resp chainResponseMessage
		if err := decodeInto(data, &resp); err != nil {
			return
		}
		if resp.PeerID != n.transport.PeerID() {
			return
		}
		if n.state == StateSyncing {
			n.syncVotes = append(n.syncVotes, resp.Chain)
		} else if n.bc.ReplaceChain(resp.Chain) {
			n.log.Infof("node: replaced chain from peer %s", from)
		}
	}
}

func (n *Node) handleCommand(line string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return
	}

	switch {
	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "p":
		fmt.Fprintln(n.out, n.transport.PeerID())

	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "c":
		for _, b := range n.bc.Chain() {
			fmt.Fprintln(n.out, b.String())
		}

	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "bal":
		fmt.Fprintf(n.out, "%.2f\n", n.bc.BalanceOf(n.bc.Wallet().PublicKey()))

	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "validator":
		for _, a := range n.bc.Validators().Accounts() {
			fmt.Fprintln(n.out, a)
		}

	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "stakes":
		fmt.Fprintf(n.out, "%d\n", n.bc.StakeOf(n.bc.Wallet().PublicKey()))

	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "mempool":
		for _, tx := range n.bc.Mempool().Snapshot() {
			fmt.Fprintln(n.out, tx.ID)
		}

	case len(fields) == 2 && fields[0] == "ls" && fields[1] == "wallet":
		fmt.Fprintln(n.out, n.bc.Wallet().KeypairHex())

	case len(fields) == 2 && fields[0] == "create" && fields[1] == "wallet":
		w, err := core.NewWallet()
		if err != nil {
			fmt.Fprintf(n.out, "error: %v\n", err)
			return
		}
		n.bc.SetWallet(w)
		fmt.Fprintln(n.out, w.KeypairHex())

	case len(fields) == 3 && fields[0] == "set" && fields[1] == "wallet":
		w, err := core.FromKeypairHex(fields[2])
		if err != nil {
			fmt.Fprintf(n.out, "error: %v\n", err)
			return
		}
		n.bc.SetWallet(w)

	case len(fields) == 5 && fields[0] == "create" && fields[1] == "txn":
		n.handleCreateTransaction(fields[2], fields[3], fields[4])

	default:
		fmt.Fprintf(n.out, "unrecognized command: %s\n", line)
	}
}

func (n *Node) handleCreateTransaction(to, amountStr, kindStr string) {
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		fmt.Fprintf(n.out, "error: invalid amount %q\n", amountStr)
		return
	}

	var kind core.TxKind
	switch strings.ToLower(kindStr) {
	case "txn":
		kind = core.KindTransaction
	case "stake":
		kind = core.KindStake
	case "validator":
		kind = core.KindValidator
	default:
		fmt.Fprintf(n.out, "error: unknown transaction kind %q\n", kindStr)
		return
	}

	tx, err := core.BuildTransaction(n.bc.Wallet(), to, amount, kind)
	if err != nil {
		fmt.Fprintf(n.out, "error: %v\n", err)
		return
	}
	if err := n.bc.AdmitTransaction(tx); err != nil {
		fmt.Fprintf(n.out, "error: %v\n", err)
		return
	}
	n.broadcastTransaction(tx)
	fmt.Fprintln(n.out, tx.ID)
}
