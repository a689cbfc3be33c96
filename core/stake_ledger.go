package core

// stake_ledger.go – per-address stake balance. Stake is monotonic: it only
// ever increases, via STAKE transactions applied through Update.

import (
	"math"
	"sync"
)

// StakeLedger maps a pubkey-hex address to its accumulated stake.
type StakeLedger struct {
	mu     sync.RWMutex
	stakes map[string]uint64
}

// NewStakeLedger returns an empty ledger.
func NewStakeLedger() *StakeLedger {
	return &StakeLedger{stakes: make(map[string]uint64)}
}

func (s *StakeLedger) initialize(addr string) {
	if _, ok := s.stakes[addr]; !ok {
		s.stakes[addr] = 0
	}
}

// GetBalance returns addr's stake, initializing it to zero on first read.
func (s *StakeLedger) GetBalance(addr string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialize(addr)
	return s.stakes[addr]
}

// AddStake monotonically increases addr's stake by amount.
func (s *StakeLedger) AddStake(addr string, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialize(addr)
	s.stakes[addr] += amount
}

// Update applies a STAKE transaction: the floor of its amount is added to
// the sender's stake.
func (s *StakeLedger) Update(tx Transaction) {
	s.AddStake(tx.Input.From, uint64(math.Floor(tx.Output.Amount)))
}

// GetMax returns the address with the largest stake among candidates. Ties
// are broken by the order of candidates: the first address holding the
// largest stake wins, so the result is deterministic for a given candidate
// slice and stake state. It returns "" for an empty candidate list.
func (s *StakeLedger) GetMax(candidates []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best string
	var bestStake uint64
	found := false
	for _, addr := range candidates {
		s.initialize(addr)
		stake := s.stakes[addr]
		if !found || stake > bestStake {
			best = addr
			bestStake = stake
			found = true
		}
	}
	return best
}
