package core

// mempool.go – the pending-transaction buffer. De-dup is by Transaction.ID;
// the mempool itself does not check balances (that admission policy lives
// one layer up, in Blockchain, which is the only component that knows
// current balances).

import "sync"

// MinTxsToMine is the default minimum number of pending transactions
// required before a node is allowed to mine a block. A deployment may
// override this via config.Config.Consensus.MempoolMineThreshold and
// NewMempoolWithThreshold, e.g. to run a faster test network.
const MinTxsToMine = 2

// Mempool holds an ordered list of pending transactions.
type Mempool struct {
	mu        sync.RWMutex
	txs       []Transaction
	minToMine int
}

// NewMempool returns an empty mempool using the protocol default mining
// threshold (MinTxsToMine).
func NewMempool() *Mempool {
	return NewMempoolWithThreshold(MinTxsToMine)
}

// NewMempoolWithThreshold returns an empty mempool that will not be mined
// from until it holds at least minToMine transactions.
func NewMempoolWithThreshold(minToMine int) *Mempool {
	return &Mempool{minToMine: minToMine}
}

// MinToMine returns the minimum pending-transaction count this mempool
// requires before it may be mined.
func (m *Mempool) MinToMine() int {
	return m.minToMine
}

// Add appends tx unconditionally. Callers must check Exists first if
// de-duplication is required.
func (m *Mempool) Add(tx Transaction) {
	m.mu.Lock()
	m.txs = append(m.txs, tx)
	m.mu.Unlock()
}

// Exists reports whether a transaction with the same ID as tx is already
// pending.
func (m *Mempool) Exists(tx Transaction) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.txs {
		if t.ID == tx.ID {
			return true
		}
	}
	return false
}

// Len returns the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs)
}

// Snapshot returns a copy of all pending transactions without draining
// them, in arrival order.
func (m *Mempool) Snapshot() []Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Transaction, len(m.txs))
	copy(out, m.txs)
	return out
}

// DrainValid empties the mempool and returns only the transactions whose
// signature verified.
func (m *Mempool) DrainValid() []Transaction {
	m.mu.Lock()
	drained := m.txs
	m.txs = nil
	m.mu.Unlock()

	valid := make([]Transaction, 0, len(drained))
	for _, tx := range drained {
		if VerifyTransaction(tx) {
			valid = append(valid, tx)
		}
	}
	return valid
}

// Clear empties the mempool, discarding all pending transactions.
func (m *Mempool) Clear() {
	m.mu.Lock()
	m.txs = nil
	m.mu.Unlock()
}

// Replace atomically swaps the mempool's contents, keeping only
// signature-valid transactions from txs. The node's chain sync does not
// call it: a chain response carries blocks only, not the peer's mempool.
func (m *Mempool) Replace(txs []Transaction) {
	valid := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if VerifyTransaction(tx) {
			valid = append(valid, tx)
		}
	}
	m.mu.Lock()
	m.txs = valid
	m.mu.Unlock()
}
