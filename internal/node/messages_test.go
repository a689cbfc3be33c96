package node

import (
	"testing"

	"posnet/core"
)

func TestEncodeDecodeBlockMessageRoundTrip(t *testing.T) {
	block := core.GenesisBlock()
	data, err := encodeBlock(block)
	if err != nil {
		t.Fatalf("encodeBlock: %v", err)
	}

	kind, err := peekKind(data)
	if err != nil {
		t.Fatalf("peekKind: %v", err)
	}
	if kind != kindBlock {
		t.Fatalf("kind = %q, want %q", kind, kindBlock)
	}

	var msg blockMessage
	if err := decodeInto(data, &msg); err != nil {
		t.Fatalf("decodeInto: %v", err)
	}
	if msg.Block.Hash != block.Hash {
		t.Fatalf("round-tripped hash = %s, want %s", msg.Block.Hash, block.Hash)
	}
}

func TestEncodeDecodeChainRequestResponse(t *testing.T) {
	reqData, err := encodeChainRequest("1", "peer-a")
	if err != nil {
		t.Fatalf("encodeChainRequest: %v", err)
	}
	kind, err := peekKind(reqData)
	if err != nil || kind != kindChainRequest {
		t.Fatalf("peekKind(request) = %q, %v", kind, err)
	}

	chain := []core.Block{core.GenesisBlock()}
	respData, err := encodeChainResponse("1", "peer-b", chain)
	if err != nil {
		t.Fatalf("encodeChainResponse: %v", err)
	}
	var resp chainResponseMessage
	if err := decodeInto(respData, &resp); err != nil {
		t.Fatalf("decodeInto: %v", err)
	}
	if len(resp.Chain) != 1 || resp.Chain[0].Hash != chain[0].Hash {
		t.Fatalf("round-tripped chain mismatch: %+v", resp.Chain)
	}
}
