package relay

import (
	"log/slog"
	"sync"

	v1 "warden/shared/contracts/presence/v1"
)

// Topic is an in-memory membership + broadcast fanout primitive.
//
// Concurrency guarantees:
// - Join/Leave are safe under concurrent Broadcast.
// - Broadcast never blocks (drops under backpressure).
// - Broadcast is panic-safe because Peer.Send is never closed by the server.
//
// Broadcast always excludes the sender: the relay exists to give clients
// cross-tab semantics, and a tab never hears its own messages.
type Topic struct {
	log  *slog.Logger
	Name string

	mu      sync.RWMutex
	members map[string]*Peer
}

// NewTopic constructs a topic.
func NewTopic(log *slog.Logger, name string) *Topic {
	return &Topic{
		log:     log,
		Name:    name,
		members: make(map[string]*Peer),
	}
}

// Join adds a peer to membership.
func (t *Topic) Join(peer *Peer) {
	if t == nil || peer == nil || peer.SessionID == "" {
		return
	}

	t.mu.Lock()
	t.members[peer.SessionID] = peer
	n := len(t.members)
	t.mu.Unlock()

	topicMembers.WithLabelValues(t.Name).Set(float64(n))
	t.log.Info("topic.member.join", "topic", t.Name, "session_id", peer.SessionID)
}

// Leave removes a peer from membership and signals shutdown for that peer.
func (t *Topic) Leave(sessionID string) {
	if t == nil || sessionID == "" {
		return
	}

	var p *Peer

	t.mu.Lock()
	p = t.members[sessionID]
	delete(t.members, sessionID)
	n := len(t.members)
	t.mu.Unlock()

	// Signal peer shutdown after removing from membership.
	// This ordering avoids race windows where a broadcaster still holds a pointer
	// while the peer goroutines are being torn down.
	if p != nil {
		p.Close()
	}

	topicMembers.WithLabelValues(t.Name).Set(float64(n))
	t.log.Info("topic.member.leave", "topic", t.Name, "session_id", sessionID)
}

// Broadcast fanouts an envelope to all members except the sender.
// Non-blocking: if a member queue is full or the peer is shutting down, it is dropped.
func (t *Topic) Broadcast(from string, env v1.Envelope) {
	if t == nil {
		return
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	for id, m := range t.members {
		if m == nil || id == from {
			continue
		}

		select {
		case <-m.Done():
			// Skip peers that are shutting down.
			continue
		default:
		}

		select {
		case m.Send <- env:
			envelopesRelayed.WithLabelValues(t.Name, env.Type).Inc()
		default:
			// Drop rather than block the whole topic.
			envelopesDropped.WithLabelValues(t.Name).Inc()
		}
	}
}

// Size reports current membership.
func (t *Topic) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}
