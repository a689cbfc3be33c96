package core

// account_ledger.go – per-address balance map. Balances may go negative;
// the base protocol performs no overdraft check here (see Blockchain's
// mempool admission filter for the one place balance is actually enforced).

import "sync"

// AccountLedger maps a pubkey-hex address to its balance.
type AccountLedger struct {
	mu       sync.RWMutex
	balances map[string]float64
}

// NewAccountLedger returns an empty ledger. Callers typically seed it via
// Increment for the bootstrap accounts immediately afterwards.
func NewAccountLedger() *AccountLedger {
	return &AccountLedger{balances: make(map[string]float64)}
}

// initialize lazily creates a zero balance entry for addr. Callers must
// hold mu.
func (a *AccountLedger) initialize(addr string) {
	if _, ok := a.balances[addr]; !ok {
		a.balances[addr] = 0
	}
}

// GetBalance returns addr's balance, initializing it to zero on first read.
func (a *AccountLedger) GetBalance(addr string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initialize(addr)
	return a.balances[addr]
}

// Increment adds amount to addr's balance.
func (a *AccountLedger) Increment(addr string, amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initialize(addr)
	a.balances[addr] += amount
}

// Decrement subtracts amount from addr's balance. No overdraft check is
// performed; balances may go negative.
func (a *AccountLedger) Decrement(addr string, amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initialize(addr)
	a.balances[addr] -= amount
}

// Transfer moves amount from `from` to `to`. Credit happens before debit,
// so a self-transfer (from == to) nets to zero rather than double-counting.
func (a *AccountLedger) Transfer(from, to string, amount float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initialize(from)
	a.initialize(to)
	a.balances[to] += amount
	a.balances[from] -= amount
}
