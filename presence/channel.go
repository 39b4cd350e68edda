package presence

import (
	"context"
	"errors"
	"sync"

	v1 "warden/shared/contracts/presence/v1"
)

// ErrChannelClosed is returned by Publish after Close.
var ErrChannelClosed = errors.New("presence channel closed")

// Channel is one tab's handle onto a broadcast topic.
//
// Publish delivers the envelope to every *other* peer on the topic; a peer
// never receives its own messages. Delivery is fire-and-forget: there is no
// ordering guarantee between concurrent publishers and no delivery
// confirmation.
type Channel interface {
	Publish(ctx context.Context, env v1.Envelope) error
	// Subscribe registers fn for every incoming envelope and returns a cancel
	// func. fn must be quick; it is called on the channel's delivery goroutine.
	Subscribe(fn func(v1.Envelope)) (cancel func())
	Close() error
}

// LocalBus gives BroadcastChannel semantics inside one process. It exists for
// tests and for shells that host several tabs in a single process.
type LocalBus struct {
	mu     sync.Mutex
	nextID int
	peers  map[int]*localChannel
}

// NewLocalBus constructs an empty bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{peers: make(map[int]*localChannel)}
}

// Open returns a new peer handle on the bus.
func (b *LocalBus) Open() Channel {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := &localChannel{bus: b, id: id, subs: make(map[int]func(v1.Envelope))}
	b.peers[id] = ch
	return ch
}

func (b *LocalBus) broadcast(from int, env v1.Envelope) {
	b.mu.Lock()
	peers := make([]*localChannel, 0, len(b.peers))
	for id, p := range b.peers {
		if id == from {
			continue
		}
		peers = append(peers, p)
	}
	b.mu.Unlock()

	for _, p := range peers {
		p.deliver(env)
	}
}

func (b *LocalBus) remove(id int) {
	b.mu.Lock()
	delete(b.peers, id)
	b.mu.Unlock()
}

type localChannel struct {
	bus *LocalBus
	id  int

	mu      sync.Mutex
	closed  bool
	nextSub int
	subs    map[int]func(v1.Envelope)
}

func (c *localChannel) Publish(ctx context.Context, env v1.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChannelClosed
	}

	c.bus.broadcast(c.id, env)
	return nil
}

func (c *localChannel) Subscribe(fn func(v1.Envelope)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *localChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.subs = make(map[int]func(v1.Envelope))
	c.mu.Unlock()

	c.bus.remove(c.id)
	return nil
}

func (c *localChannel) deliver(env v1.Envelope) {
	c.mu.Lock()
	fns := make([]func(v1.Envelope), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(env)
	}
}
