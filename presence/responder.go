package presence

import (
	"context"
	"log/slog"
	"os"
	"time"

	v1 "warden/shared/contracts/presence/v1"
)

const responderPublishTimeout = 2 * time.Second

// ActiveFunc reports whether this tab currently holds an active session.
// It is consulted on every incoming check, so logout takes effect immediately.
type ActiveFunc func() bool

// Responder is the symmetric half of the presence protocol: while mounted, it
// answers every session_check from other tabs with session_active — but only
// if this tab's session is active. A tab with no session never replies, which
// is what makes a lone-tab check resolve false.
type Responder struct {
	log    *slog.Logger
	ch     Channel
	active ActiveFunc
}

// NewResponder constructs a Responder.
func NewResponder(log *slog.Logger, ch Channel, active ActiveFunc) *Responder {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Responder{log: log, ch: ch, active: active}
}

// Start mounts the responder and returns a stop func.
func (r *Responder) Start() (stop func()) {
	return r.ch.Subscribe(func(env v1.Envelope) {
		if env.Type != v1.TypeSessionCheck {
			return
		}
		if r.active == nil || !r.active() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), responderPublishTimeout)
		defer cancel()

		reply := v1.NewEnvelope(v1.TypeSessionActive, v1.TopicSessionCheck, time.Now().UTC())
		if err := r.ch.Publish(ctx, reply); err != nil {
			r.log.Warn("presence.reply.fail", "err", err)
			return
		}
		r.log.Debug("presence.reply.sent", "check_id", env.ID)
	})
}
