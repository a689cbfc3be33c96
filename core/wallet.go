package core

// Wallet implementation for the posnet node.
//
// Unlike an HD wallet, a Wallet here owns exactly one ed25519 key-pair: a
// 32-byte private seed plus its 32-byte public key. The public key, hex
// encoded, is the account identity used everywhere else in this package
// (transactions, ledgers, the validator set).
//
// Import hygiene: wallet depends only on the crypto helpers in this package.
// It does not know about the Blockchain, mempool, or network – callers pass
// a Wallet in wherever signing is needed.

import (
	"crypto/ed25519"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Wallet owns a single ed25519 key-pair. seed is the raw 32-byte private
// seed; priv is the expanded form crypto/ed25519 needs for signing.
type Wallet struct {
	seed []byte
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewWallet generates a fresh random key-pair.
func NewWallet() (*Wallet, error) {
	pub, priv, err := ed25519.GenerateKey(crand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	seed := append([]byte(nil), priv.Seed()...)
	return &Wallet{seed: seed, priv: priv, pub: pub}, nil
}

// KeypairHex returns the concatenation seed||public as a 128-char hex
// string, suitable for `set wallet <hex>` round-tripping via
// FromKeypairHex.
func (w *Wallet) KeypairHex() string {
	return hex.EncodeToString(w.seed) + hex.EncodeToString(w.pub)
}

// FromKeypairHex reconstructs a wallet from the hex string produced by
// KeypairHex: the first 64 hex chars are the 32-byte ed25519 seed, the
// remaining 64 are the 32-byte public key (redundant – it's re-derived from
// the seed – but kept so the format round-trips byte for byte).
func FromKeypairHex(keypairHex string) (*Wallet, error) {
	raw, err := hex.DecodeString(keypairHex)
	if err != nil {
		return nil, fmt.Errorf("decode keypair hex: %w", err)
	}
	if len(raw) < ed25519.SeedSize {
		return nil, errors.New("keypair hex too short")
	}
	seed := append([]byte(nil), raw[:ed25519.SeedSize]...)
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Wallet{seed: seed, priv: priv, pub: pub}, nil
}

// PublicKey returns the 64-char hex encoded public key: the account
// identity used as TransactionInput.From and Block.Validator.
func (w *Wallet) PublicKey() string {
	return hex.EncodeToString(w.pub)
}

// Sign returns a hex encoded ed25519 signature over message. Signing is
// pure with respect to the key-pair; it never mutates wallet state.
func (w *Wallet) Sign(message string) string {
	sig := ed25519.Sign(w.priv, []byte(message))
	return hex.EncodeToString(sig)
}

// Seed returns a copy of the wallet's 32-byte private seed. Callers should
// not retain or leak it.
func (w *Wallet) Seed() []byte {
	out := make([]byte, len(w.seed))
	copy(out, w.seed)
	return out
}
