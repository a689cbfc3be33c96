package core

// validator_set.go – the ordered list of pubkeys eligible to author blocks.

import "sync"

// ValidatorSet is an ordered, append-only list of candidate validators.
// Duplicates are permitted: registering the same address twice is a no-op
// from the state-machine's perspective but remains visible in Accounts.
type ValidatorSet struct {
	mu       sync.RWMutex
	accounts []string
}

// NewValidatorSet returns an empty set.
func NewValidatorSet() *ValidatorSet {
	return &ValidatorSet{}
}

// MinValidatorStake is the minimum amount a VALIDATOR transaction must send
// to the burn sink "0" to register its sender as a validator.
const MinValidatorStake = 25.0

// Update accepts tx's sender as a validator iff tx.Output.Amount >=
// MinValidatorStake and tx.Output.To == "0". It returns whether the
// registration was accepted; callers use this to decide whether to charge
// the sender.
func (v *ValidatorSet) Update(tx Transaction) bool {
	if tx.Output.Amount < MinValidatorStake || tx.Output.To != "0" {
		return false
	}
	v.mu.Lock()
	v.accounts = append(v.accounts, tx.Input.From)
	v.mu.Unlock()
	return true
}

// Accounts returns a copy of the registered validator addresses, in
// registration order (duplicates included).
func (v *ValidatorSet) Accounts() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.accounts))
	copy(out, v.accounts)
	return out
}

// Seed appends addr directly, bypassing the amount/"0" check. Used only to
// install the bootstrap validator set at genesis.
func (v *ValidatorSet) Seed(addr string) {
	v.mu.Lock()
	v.accounts = append(v.accounts, addr)
	v.mu.Unlock()
}
