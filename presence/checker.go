package presence

import (
	"context"
	"log/slog"
	"os"
	"time"

	v1 "warden/shared/contracts/presence/v1"
)

// DefaultCheckTimeout bounds how long a check waits for a reply.
const DefaultCheckTimeout = 500 * time.Millisecond

// Checker answers "is another tab logged in?" with one broadcast round trip.
type Checker struct {
	log     *slog.Logger
	ch      Channel
	timeout time.Duration
}

// NewChecker constructs a Checker over ch. A non-positive timeout gets
// DefaultCheckTimeout.
func NewChecker(log *slog.Logger, ch Channel, timeout time.Duration) *Checker {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{log: log, ch: ch, timeout: timeout}
}

// Check broadcasts session_check and waits for the first session_active reply.
//
// It resolves true on any reply within the window and false otherwise —
// including context cancellation and publish failures. A lone tab therefore
// always resolves false; the timeout is the only cancellation mechanism and
// never surfaces as an error.
func (c *Checker) Check(ctx context.Context) bool {
	reply := make(chan struct{}, 1)

	cancel := c.ch.Subscribe(func(env v1.Envelope) {
		if env.Type != v1.TypeSessionActive {
			return
		}
		select {
		case reply <- struct{}{}:
		default:
		}
	})
	defer cancel()

	env := v1.NewEnvelope(v1.TypeSessionCheck, v1.TopicSessionCheck, time.Now().UTC())
	if err := c.ch.Publish(ctx, env); err != nil {
		c.log.Warn("presence.check.publish.fail", "err", err)
		return false
	}
	c.log.Debug("presence.check.start", "envelope_id", env.ID)

	t := time.NewTimer(c.timeout)
	defer t.Stop()

	select {
	case <-reply:
		c.log.Info("presence.check.result", "multiple", true)
		return true
	case <-t.C:
		c.log.Info("presence.check.result", "multiple", false)
		return false
	case <-ctx.Done():
		c.log.Debug("presence.check.cancelled")
		return false
	}
}
