package core

// transaction.go – the signed value-transfer / stake / become-validator
// record and its canonical wire encoding.
//
// Canonical JSON note: encoding/json always serializes exported struct
// fields in declaration order, never alphabetically and never by map
// iteration – so TransactionOutput's field order below (To, Amount, Fee) is
// what every node signs and verifies over. Changing the field order of
// TransactionOutput is a wire-breaking change.

import (
	"encoding/json"
	"fmt"
	"time"
)

// TxKind enumerates the three transaction shapes the core understands.
type TxKind string

const (
	KindTransaction TxKind = "TRANSACTION"
	KindStake       TxKind = "STAKE"
	KindValidator   TxKind = "VALIDATOR"
)

// TransactionFee is the flat fee charged on every transaction regardless of
// kind. The base protocol has no fee market.
const TransactionFee = 1.0

// TransactionInput carries the sender's attestation over the output.
type TransactionInput struct {
	Timestamp int64  `json:"timestamp"`
	From      string `json:"from"`
	Signature string `json:"signature"`
}

// TransactionOutput is the part of a Transaction that gets signed. To is
// either a 64-char pubkey hex or the literal "0" (the burn/registration
// sink used by STAKE and VALIDATOR transactions).
type TransactionOutput struct {
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Fee    float64 `json:"fee"`
}

// Transaction is immutable once constructed by BuildTransaction. Equality between two
// transactions is defined solely by ID.
type Transaction struct {
	ID     string             `json:"id"`
	Kind   TxKind             `json:"kind"`
	Input  TransactionInput   `json:"input"`
	Output TransactionOutput  `json:"output"`
}

// canonicalOutputJSON returns the exact byte sequence that is signed and
// verified for a transaction: the JSON encoding of its output alone.
func canonicalOutputJSON(out TransactionOutput) (string, error) {
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	return string(b), nil
}

// BuildTransaction constructs a signed Transaction. fee is always
// TransactionFee; only the output object (to, amount, fee) is signed – the
// kind, ID and timestamp are not – so a replay of the same
// sender/output pair gets a fresh ID (and therefore is not deduplicated by
// the mempool) but always carries an identical signature.
func BuildTransaction(sender *Wallet, to string, amount float64, kind TxKind) (Transaction, error) {
	out := TransactionOutput{To: to, Amount: amount, Fee: TransactionFee}
	preimage, err := canonicalOutputJSON(out)
	if err != nil {
		return Transaction{}, err
	}
	sig := sender.Sign(preimage)

	return Transaction{
		ID:   NewID(),
		Kind: kind,
		Input: TransactionInput{
			Timestamp: time.Now().Unix(),
			From:      sender.PublicKey(),
			Signature: sig,
		},
		Output: out,
	}, nil
}

// VerifyTransaction reports whether a transaction's signature is valid over
// its own output, as produced by the sender named in Input.From.
//
// Note that Input.Timestamp and ID are not covered by this signature:
// replay protection for the mempool relies solely on ID uniqueness (see
// Mempool.Exists), not on timestamp freshness.
func VerifyTransaction(tx Transaction) bool {
	preimage, err := canonicalOutputJSON(tx.Output)
	if err != nil {
		return false
	}
	return Verify(tx.Input.From, preimage, tx.Input.Signature)
}
