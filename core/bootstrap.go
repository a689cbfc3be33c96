package core

// bootstrap.go – the fixed constants every node seeds its state with at
// genesis. These MUST match byte-for-byte across all nodes to interoperate:
// diverging here means diverging chains from block zero.

// BootstrapAddresses are the two pubkeys seeded with balance, stake, and
// validator status at genesis.
var BootstrapAddresses = [2]string{
	"230681c76f00b412ccf7757a8449c448a04acd735e497a7612b66d8bfcb8e576",
	"5aede624154386ca358af195e13a46981b917ee8279f30a67d7a211a3d3e7243",
}

// BootstrapBalance is the starting balance of each bootstrap address.
const BootstrapBalance = 500.00

// BootstrapStakes holds the starting stake of each BootstrapAddresses entry,
// in the same order: a low stake and a high stake.
var BootstrapStakes = [2]uint64{1, 100}

// seedGenesisState installs the bootstrap accounts, stakes, and validator
// set into freshly constructed ledgers.
func seedGenesisState(accounts *AccountLedger, stakes *StakeLedger, validators *ValidatorSet) {
	for i, addr := range BootstrapAddresses {
		accounts.Increment(addr, BootstrapBalance)
		stakes.AddStake(addr, BootstrapStakes[i])
		validators.Seed(addr)
	}
}
