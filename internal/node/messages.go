package node

import (
	"encoding/json"

	"posnet/core"
)

// messageKind tags the payload type of a message carried on one of the three
// gossip topics a node speaks on: blocks, transactions, chains.
type messageKind string

const (
	topicBlocks       = "blocks"
	topicTransactions = "transactions"
	topicChains       = "chains"

	kindBlock          messageKind = "BLOCK"
	kindTransaction    messageKind = "TRANSACTION"
	kindChainRequest   messageKind = "CHAIN_REQUEST"
	kindChainResponse  messageKind = "CHAIN_RESPONSE"
)

type blockMessage struct {
	Kind  messageKind `json:"kind"`
	Block core.Block  `json:"block"`
}

type transactionMessage struct {
	Kind        messageKind     `json:"kind"`
	Transaction core.Transaction `json:"transaction"`
}

// chainRequestMessage is addressed to a specific peer: PeerID names the
// node that should answer it, not the requester. Every peer observes the
// request on the shared topic, but only the named peer responds.
type chainRequestMessage struct {
	Kind      messageKind `json:"kind"`
	RequestID string      `json:"request_id"`
	PeerID    string      `json:"peer_id"`
}

// chainResponseMessage is addressed back to the original requester: PeerID
// names the node that should consume it. A node ignores any response not
// addressed to itself.
type chainResponseMessage struct {
	Kind      messageKind  `json:"kind"`
	RequestID string       `json:"request_id"`
	PeerID    string       `json:"peer_id"`
	Chain     []core.Block `json:"chain"`
}

func encodeBlock(b core.Block) ([]byte, error) {
	return json.Marshal(blockMessage{Kind: kindBlock, Block: b})
}

func encodeTransaction(tx core.Transaction) ([]byte, error) {
	return json.Marshal(transactionMessage{Kind: kindTransaction, Transaction: tx})
}

func encodeChainRequest(requestID, peerID string) ([]byte, error) {
	return json.Marshal(chainRequestMessage{Kind: kindChainRequest, RequestID: requestID, PeerID: peerID})
}

func encodeChainResponse(requestID, peerID string, chain []core.Block) ([]byte, error) {
	return json.Marshal(chainResponseMessage{Kind: kindChainResponse, RequestID: requestID, PeerID: peerID, Chain: chain})
}

// peekKind reads only the discriminator field so callers can dispatch
// before committing to a concrete message type.
func peekKind(data []byte) (messageKind, error) {
	var envelope struct {
		Kind messageKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", err
	}
	return envelope.Kind, nil
}

func decodeInto(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
