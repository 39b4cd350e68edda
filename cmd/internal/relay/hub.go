package relay

import (
	"log/slog"
	"sync"
)

// Hub owns in-memory topics and provides stable topic handles.
// It is intentionally minimal: the relay holds no durable state, so there is
// nothing behind it but the topics themselves.
type Hub struct {
	log *slog.Logger

	mu     sync.RWMutex
	topics map[string]*Topic
}

// NewHub constructs a Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:    log,
		topics: make(map[string]*Topic),
	}
}

// GetOrCreateTopic returns a stable in-memory topic handle.
func (h *Hub) GetOrCreateTopic(name string) *Topic {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.topics[name]; ok {
		return t
	}

	t := NewTopic(h.log, name)
	h.topics[name] = t
	return t
}
