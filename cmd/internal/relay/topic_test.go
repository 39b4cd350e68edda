package relay

import (
	"io"
	"log/slog"
	"testing"
	"time"

	v1 "warden/shared/contracts/presence/v1"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTopic_BroadcastExcludesSender(t *testing.T) {
	t.Parallel()

	topic := NewTopic(testLogger(), v1.TopicSessionCheck)
	a := NewPeer("a", 8)
	b := NewPeer("b", 8)
	c := NewPeer("c", 8)
	topic.Join(a)
	topic.Join(b)
	topic.Join(c)

	env := v1.NewEnvelope(v1.TypeSessionCheck, v1.TopicSessionCheck, time.Now().UTC())
	topic.Broadcast("a", env)

	if len(a.Send) != 0 {
		t.Fatalf("sender received its own envelope")
	}
	if len(b.Send) != 1 || len(c.Send) != 1 {
		t.Fatalf("peer queues b=%d c=%d want 1 each", len(b.Send), len(c.Send))
	}
}

func TestTopic_BroadcastDropsUnderBackpressure(t *testing.T) {
	t.Parallel()

	topic := NewTopic(testLogger(), v1.TopicSessionCheck)
	slow := NewPeer("slow", 32)
	topic.Join(slow)

	env := v1.NewEnvelope(v1.TypeSessionCheck, v1.TopicSessionCheck, time.Now().UTC())
	for i := 0; i < cap(slow.Send)+16; i++ {
		topic.Broadcast("other", env)
	}

	// Queue saturates at capacity; extras are dropped, never blocked on.
	if len(slow.Send) != cap(slow.Send) {
		t.Fatalf("queue=%d want %d", len(slow.Send), cap(slow.Send))
	}
}

func TestTopic_BroadcastSkipsClosedPeer(t *testing.T) {
	t.Parallel()

	topic := NewTopic(testLogger(), v1.TopicSessionCheck)
	gone := NewPeer("gone", 8)
	topic.Join(gone)
	gone.Close()

	env := v1.NewEnvelope(v1.TypeSessionActive, v1.TopicSessionCheck, time.Now().UTC())
	topic.Broadcast("other", env)

	if len(gone.Send) != 0 {
		t.Fatalf("closed peer received an envelope")
	}
}

func TestTopic_LeaveClosesPeer(t *testing.T) {
	t.Parallel()

	topic := NewTopic(testLogger(), v1.TopicSessionCheck)
	p := NewPeer("p", 8)
	topic.Join(p)

	if topic.Size() != 1 {
		t.Fatalf("size=%d want 1", topic.Size())
	}

	topic.Leave("p")

	if topic.Size() != 0 {
		t.Fatalf("size=%d want 0 after leave", topic.Size())
	}
	select {
	case <-p.Done():
	default:
		t.Fatalf("leave did not close the peer")
	}
}

func TestHub_GetOrCreateTopicIsStable(t *testing.T) {
	t.Parallel()

	hub := NewHub(testLogger())
	t1 := hub.GetOrCreateTopic(v1.TopicSessionCheck)
	t2 := hub.GetOrCreateTopic(v1.TopicSessionCheck)
	if t1 != t2 {
		t.Fatalf("hub returned distinct handles for the same topic")
	}
	if hub.GetOrCreateTopic("other") == t1 {
		t.Fatalf("distinct topics share a handle")
	}
}

func TestPeer_CloseIdempotent(t *testing.T) {
	t.Parallel()

	p := NewPeer("p", 8)
	p.Close()
	p.Close()

	select {
	case <-p.Done():
	default:
		t.Fatalf("Done not closed after Close")
	}
}
