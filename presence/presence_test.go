package presence

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	v1 "warden/shared/contracts/presence/v1"
)

const testTimeout = 100 * time.Millisecond

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLocalBus_SenderIsExcluded(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	a := bus.Open()
	b := bus.Open()

	var mu sync.Mutex
	var aGot, bGot int

	a.Subscribe(func(v1.Envelope) { mu.Lock(); aGot++; mu.Unlock() })
	b.Subscribe(func(v1.Envelope) { mu.Lock(); bGot++; mu.Unlock() })

	env := v1.NewEnvelope(v1.TypeSessionCheck, v1.TopicSessionCheck, time.Now().UTC())
	if err := a.Publish(context.Background(), env); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if aGot != 0 {
		t.Fatalf("sender received its own message (%d)", aGot)
	}
	if bGot != 1 {
		t.Fatalf("peer deliveries=%d want 1", bGot)
	}
}

func TestLocalBus_PublishAfterClose(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	a := bus.Open()
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close must be idempotent: %v", err)
	}

	env := v1.NewEnvelope(v1.TypeSessionCheck, v1.TopicSessionCheck, time.Now().UTC())
	if err := a.Publish(context.Background(), env); err != ErrChannelClosed {
		t.Fatalf("Publish after Close: err=%v want ErrChannelClosed", err)
	}
}

func TestChecker_LoneTabResolvesFalse(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	c := NewChecker(discardLogger(), bus.Open(), testTimeout)

	start := time.Now()
	if c.Check(context.Background()) {
		t.Fatalf("lone tab must resolve false")
	}
	if elapsed := time.Since(start); elapsed < testTimeout {
		t.Fatalf("check resolved before the timeout window: %v", elapsed)
	}
}

func TestChecker_InactivePeerNeverReplies(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	checking := bus.Open()
	idle := bus.Open()

	// The other tab is mounted but holds no session.
	stop := NewResponder(discardLogger(), idle, func() bool { return false }).Start()
	defer stop()

	c := NewChecker(discardLogger(), checking, testTimeout)
	if c.Check(context.Background()) {
		t.Fatalf("a tab without a session must not count as a second session")
	}
}

func TestChecker_DetectsActivePeer(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	checking := bus.Open()
	active := bus.Open()

	stop := NewResponder(discardLogger(), active, func() bool { return true }).Start()
	defer stop()

	c := NewChecker(discardLogger(), checking, testTimeout)
	if !c.Check(context.Background()) {
		t.Fatalf("active peer must be detected")
	}
}

// The protocol is symmetric: two tabs with active sessions each independently
// resolve true, even when probing concurrently.
func TestChecker_SymmetricConcurrentChecks(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	chA := bus.Open()
	chB := bus.Open()

	stopA := NewResponder(discardLogger(), chA, func() bool { return true }).Start()
	defer stopA()
	stopB := NewResponder(discardLogger(), chB, func() bool { return true }).Start()
	defer stopB()

	checkerA := NewChecker(discardLogger(), chA, testTimeout)
	checkerB := NewChecker(discardLogger(), chB, testTimeout)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	wg.Add(2)
	go func() { defer wg.Done(); results[0] = checkerA.Check(context.Background()) }()
	go func() { defer wg.Done(); results[1] = checkerB.Check(context.Background()) }()
	wg.Wait()

	if !results[0] || !results[1] {
		t.Fatalf("both tabs must resolve true, got %v", results)
	}
}

func TestChecker_CancelledContextResolvesFalse(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	c := NewChecker(discardLogger(), bus.Open(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if c.Check(ctx) {
		t.Fatalf("cancelled check must resolve false, not hang or error")
	}
}

func TestResponder_IgnoresNonCheckEnvelopes(t *testing.T) {
	t.Parallel()

	bus := NewLocalBus()
	a := bus.Open()
	b := bus.Open()

	stop := NewResponder(discardLogger(), b, func() bool { return true }).Start()
	defer stop()

	var mu sync.Mutex
	var replies int
	a.Subscribe(func(env v1.Envelope) {
		if env.Type == v1.TypeSessionActive {
			mu.Lock()
			replies++
			mu.Unlock()
		}
	})

	// session_active must not trigger a reply storm between responders.
	env := v1.NewEnvelope(v1.TypeSessionActive, v1.TopicSessionCheck, time.Now().UTC())
	if err := a.Publish(context.Background(), env); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if replies != 0 {
		t.Fatalf("responder replied to a non-check envelope (%d)", replies)
	}
}
