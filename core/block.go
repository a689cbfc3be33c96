package core

// block.go – the signed container of ordered transactions that extends the
// chain by one height.

import (
	"encoding/json"
	"fmt"
)

// GenesisTimestamp, GenesisDifficulty and the rest of the genesis fields are
// fixed so that every honest node starts from byte-identical state.
const (
	GenesisPreviousHash = "genesis"
	GenesisValidator    = "genesis"
	GenesisSignature    = "genesis"
	GenesisTimestamp    = 1650205976
	GenesisDifficulty   = 5
)

// Block is the container of ordered transactions authored and signed by a
// single validator. Block equality (used only to confirm two genesis
// blocks match) is defined by (ID, PreviousHash).
type Block struct {
	ID           uint64        `json:"id"`
	Hash         string        `json:"hash"`
	PreviousHash string        `json:"previous_hash"`
	Timestamp    int64         `json:"timestamp"`
	Txns         []Transaction `json:"txns"`
	Validator    string        `json:"validator"`
	Signature    string        `json:"signature"`
	Difficulty   uint32        `json:"difficulty"`
}

// blockHashPayload mirrors the exact field order the wire protocol signs
// over: id, previous_hash, transactions, timestamp, validator, difficulty.
// It is a distinct type from Block (rather than reusing Block's own JSON
// tags) so that Hash and Signature – which are not part of the preimage –
// can never accidentally leak into it.
type blockHashPayload struct {
	ID           uint64        `json:"id"`
	PreviousHash string        `json:"previous_hash"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    int64         `json:"timestamp"`
	Validator    string        `json:"validator"`
	Difficulty   uint32        `json:"difficulty"`
}

// computeBlockHash returns the hex-SHA256 over the canonical JSON encoding
// of a block's content fields.
func computeBlockHash(id uint64, previousHash string, txns []Transaction, timestamp int64, validator string, difficulty uint32) (string, error) {
	payload := blockHashPayload{
		ID:           id,
		PreviousHash: previousHash,
		Transactions: txns,
		Timestamp:    timestamp,
		Validator:    validator,
		Difficulty:   difficulty,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal block payload: %w", err)
	}
	return HashHex(string(b)), nil
}

// GenesisBlock returns the fixed genesis block. It is identical across
// every node: id 0, empty txns, fixed timestamp/validator/signature, and a
// hash derived the same way as any other block's.
func GenesisBlock() Block {
	hash, err := computeBlockHash(0, GenesisPreviousHash, []Transaction{}, GenesisTimestamp, GenesisValidator, GenesisDifficulty)
	if err != nil {
		// computeBlockHash only fails on JSON marshal errors, which cannot
		// happen for this fixed, primitive-only payload.
		panic(fmt.Sprintf("genesis hash: %v", err))
	}
	return Block{
		ID:           0,
		Hash:         hash,
		PreviousHash: GenesisPreviousHash,
		Timestamp:    GenesisTimestamp,
		Txns:         []Transaction{},
		Validator:    GenesisValidator,
		Signature:    GenesisSignature,
		Difficulty:   GenesisDifficulty,
	}
}

// NewBlock computes the canonical hash over its content fields, signs the
// hex hash string (not the JSON content) with wallet, and stamps validator
// as wallet's public key.
func NewBlock(id uint64, previousHash string, timestamp int64, txns []Transaction, difficulty uint32, wallet *Wallet) (Block, error) {
	validator := wallet.PublicKey()
	hash, err := computeBlockHash(id, previousHash, txns, timestamp, validator, difficulty)
	if err != nil {
		return Block{}, err
	}
	sig := wallet.Sign(hash)

	return Block{
		ID:           id,
		Hash:         hash,
		PreviousHash: previousHash,
		Timestamp:    timestamp,
		Txns:         txns,
		Validator:    validator,
		Signature:    sig,
		Difficulty:   difficulty,
	}, nil
}

// VerifySignature recomputes b's hash from its content fields and verifies
// the signature over that hash string under b.Validator's public key. This
// single check covers both hash integrity and block authorship: if either
// the content or the claimed hash were tampered with, the recomputed hash
// will not equal b.Hash, and if it does match but the signature is
// malformed or forged, Verify returns false.
func (b Block) VerifySignature() bool {
	hash, err := computeBlockHash(b.ID, b.PreviousHash, b.Txns, b.Timestamp, b.Validator, b.Difficulty)
	if err != nil {
		return false
	}
	if hash != b.Hash {
		return false
	}
	return Verify(b.Validator, b.Hash, b.Signature)
}

// SameGenesis reports whether b is identical to the canonical genesis
// block by the protocol's block-equality rule (ID, PreviousHash).
func (b Block) SameGenesis() bool {
	g := GenesisBlock()
	return b.ID == g.ID && b.PreviousHash == g.PreviousHash
}

// String renders a one-line summary for operator-facing "ls c" output and
// log lines.
func (b Block) String() string {
	return fmt.Sprintf("#%d hash=%s prev=%s validator=%s difficulty=%d txns=%d",
		b.ID, b.Hash, b.PreviousHash, b.Validator, b.Difficulty, len(b.Txns))
}
