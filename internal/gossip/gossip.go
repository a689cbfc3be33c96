// Package gossip is the node's concrete binding to the outside world: an
// authenticated, flood-publish/subscribe transport built on libp2p's
// GossipSub. The consensus core in package core never imports this package;
// only the node event loop in internal/node holds a *Transport.
package gossip

import (
	"context"
	"fmt"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	log "github.com/sirupsen/logrus"
)

// Message is one inbound item delivered on the Inbox channel: a topic, its
// payload, and the libp2p peer id it arrived from.
type Message struct {
	Topic string
	Data  []byte
	From  string
}

// inboxBuffer sizes the channel every subscription goroutine feeds. It only
// needs to absorb a burst between two ticks of the consumer's select loop,
// not sustained backpressure.
const inboxBuffer = 256

// Transport is a libp2p-backed gossip node: one host, one GossipSub
// instance, and a set of joined topics. Subscription goroutines only ever
// decode-and-forward onto inbox; they never call into consensus code
// directly, so the single select loop that drains Inbox() remains the only
// goroutine that ever touches a *core.Blockchain.
type Transport struct {
	host host.Host
	ps   *pubsub.PubSub

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
	subs   map[string]*pubsub.Subscription

	inbox chan Message

	log *log.Logger
}

// New creates a libp2p host listening on listenAddr, attaches GossipSub,
// dials any bootstrapPeers, and starts mDNS discovery under discoveryTag.
func New(ctx context.Context, listenAddr, discoveryTag string, bootstrapPeers []string) (*Transport, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("gossip: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("gossip: create gossipsub: %w", err)
	}

	tr := &Transport{
		host:   h,
		ps:     ps,
		topics: make(map[string]*pubsub.Topic),
		subs:   make(map[string]*pubsub.Subscription),
		inbox:  make(chan Message, inboxBuffer),
		log:    log.StandardLogger(),
	}

	for _, addr := range bootstrapPeers {
		info, err := peer.AddrInfoFromString(addr)
		if err != nil {
			tr.log.Warnf("gossip: bad bootstrap addr %q: %v", addr, err)
			continue
		}
		if err := h.Connect(ctx, *info); err != nil {
			tr.log.Warnf("gossip: dial bootstrap %q: %v", addr, err)
			continue
		}
	}

	disc := mdns.NewMdnsService(h, discoveryTag, mdnsNotifee{ctx: ctx, host: h, log: tr.log})
	if err := disc.Start(); err != nil {
		tr.log.Warnf("gossip: mdns discovery unavailable: %v", err)
	}

	return tr, nil
}

// PeerID returns this transport's libp2p peer id string, used as the
// `from_peer_id`/`receiver` identity in chain sync messages.
func (t *Transport) PeerID() string {
	return t.host.ID().String()
}

// Broadcast publishes data on topic, joining it first if necessary. This is
// the core's required `Broadcast(topic, bytes)` sink.
func (t *Transport) Broadcast(topic string, data []byte) error {
	t.mu.Lock()
	top, ok := t.topics[topic]
	if !ok {
		var err error
		top, err = t.ps.Join(topic)
		if err != nil {
			t.mu.Unlock()
			return fmt.Errorf("gossip: join topic %s: %w", topic, err)
		}
		t.topics[topic] = top
	}
	t.mu.Unlock()

	return top.Publish(context.Background(), data)
}

// Subscribe joins topic (if needed) and starts pulling inbound messages on
// their own goroutine, as the pubsub API requires, but that goroutine does
// nothing except decode the envelope and push it onto Inbox() — it never
// invokes any caller-supplied logic. Messages authored by this host are
// filtered out before reaching the inbox, matching the core's expectation
// that inbound traffic only reflects peers.
func (t *Transport) Subscribe(ctx context.Context, topic string) error {
	t.mu.Lock()
	top, ok := t.topics[topic]
	if !ok {
		var err error
		top, err = t.ps.Join(topic)
		if err != nil {
			t.mu.Unlock()
			return fmt.Errorf("gossip: join topic %s: %w", topic, err)
		}
		t.topics[topic] = top
	}
	sub, err := top.Subscribe()
	if err != nil {
		t.mu.Unlock()
		return fmt.Errorf("gossip: subscribe topic %s: %w", topic, err)
	}
	t.subs[topic] = sub
	self := t.host.ID()
	t.mu.Unlock()

	go func() {
		for {
			msg, err := sub.Next(ctx)
			if err != nil {
				t.log.Debugf("gossip: subscription to %s closed: %v", topic, err)
				return
			}
			if msg.ReceivedFrom == self {
				continue
			}
			select {
			case t.inbox <- Message{Topic: topic, Data: msg.Data, From: msg.ReceivedFrom.String()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Inbox returns the channel every Subscribe'd topic's messages are
// delivered on. The caller's single event loop is expected to be the only
// reader, so that consensus state is only ever mutated from one goroutine.
func (t *Transport) Inbox() <-chan Message {
	return t.inbox
}

// Peers returns the libp2p peer ids of currently connected peers.
func (t *Transport) Peers() []string {
	conns := t.host.Network().Peers()
	out := make([]string, len(conns))
	for i, p := range conns {
		out[i] = p.String()
	}
	return out
}

// Close tears down the libp2p host and all its subscriptions.
func (t *Transport) Close() error {
	t.mu.Lock()
	for _, sub := range t.subs {
		sub.Cancel()
	}
	t.mu.Unlock()
	return t.host.Close()
}

// mdnsNotifee connects to peers discovered on the local network.
type mdnsNotifee struct {
	ctx  context.Context
	host host.Host
	log  *log.Logger
}

func (n mdnsNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == n.host.ID() {
		return
	}
	if err := n.host.Connect(n.ctx, pi); err != nil {
		n.log.Debugf("gossip: mdns connect to %s failed: %v", pi.ID, err)
	}
}
