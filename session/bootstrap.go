package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"warden/cmd/security/token"
)

// TokenValidator performs the single lightweight remote check that a stored
// token is still accepted by the backend.
type TokenValidator interface {
	Validate(ctx context.Context, tok string) error
}

// Bootstrapper restores the tab session on startup and publishes AuthState.
//
// The progression is Loading -> Authenticated | Unauthenticated, with
// Unauthenticated also reachable later through Logout. While Loading,
// consumers must neither render protected content nor redirect.
type Bootstrapper struct {
	log       *slog.Logger
	store     Store
	validator TokenValidator

	mu      sync.Mutex
	state   AuthState
	subs    map[int]chan AuthState
	nextSub int
}

// NewBootstrapper constructs a Bootstrapper in the Loading state.
// A nil validator skips remote revalidation and trusts the stored record.
func NewBootstrapper(log *slog.Logger, store Store, validator TokenValidator) *Bootstrapper {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Bootstrapper{
		log:       log,
		store:     store,
		validator: validator,
		state:     AuthState{Loading: true},
		subs:      make(map[int]chan AuthState),
	}
}

// Current returns the last published state.
func (b *Bootstrapper) Current() AuthState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Subscribe registers an AuthState observer. The channel is seeded with the
// current state and always carries the latest value (intermediate states may
// be dropped for slow consumers). The returned cancel func must be called
// when the observer unmounts.
func (b *Bootstrapper) Subscribe() (<-chan AuthState, func()) {
	ch := make(chan AuthState, 1)

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	ch <- b.state
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Bootstrap runs the startup sequence: load the stored session, optionally
// revalidate the token, publish the resulting state. Every failure path
// resolves to Unauthenticated; nothing is surfaced as a fatal error.
func (b *Bootstrapper) Bootstrap(ctx context.Context) AuthState {
	sess, err := b.store.Load()
	if err != nil {
		if errors.Is(err, ErrStorageCorrupt) {
			b.log.Warn("session.restore.corrupt")
		} else {
			b.log.Info("session.restore.none")
		}
		return b.publish(AuthState{IsAuthenticated: false, User: nil, Loading: false})
	}

	if b.validator != nil {
		b.log.Info("session.validate.start", "token_fp", token.FingerprintSHA256Hex(sess.Token))
		if err := b.validator.Validate(ctx, sess.Token); err != nil {
			b.log.Warn("session.validate.fail", "err", err)
			if cerr := b.store.Clear(); cerr != nil {
				b.log.Error("session.store.clear.fail", "err", cerr)
			}
			return b.publish(AuthState{IsAuthenticated: false, User: nil, Loading: false})
		}
	}

	b.log.Info("session.restore.ok", "user_id", sess.User.ID, "role", sess.User.Role)
	u := sess.User
	return b.publish(AuthState{IsAuthenticated: true, User: &u, Loading: false})
}

// Login persists a fresh session and publishes the authenticated state.
func (b *Bootstrapper) Login(sess Session) error {
	if err := b.store.Save(sess); err != nil {
		return err
	}
	b.log.Info("session.login", "user_id", sess.User.ID, "role", sess.User.Role)
	u := sess.User
	b.publish(AuthState{IsAuthenticated: true, User: &u, Loading: false})
	return nil
}

// Logout clears the store and publishes Unauthenticated before returning.
// It is synchronous and network-free: any route evaluation that runs after
// Logout returns observes the unauthenticated state.
func (b *Bootstrapper) Logout() {
	if err := b.store.Clear(); err != nil {
		b.log.Error("session.store.clear.fail", "err", err)
	}
	b.log.Info("session.logout")
	b.publish(AuthState{IsAuthenticated: false, User: nil, Loading: false})
}

// publish stores the new state and fans it out latest-wins.
func (b *Bootstrapper) publish(st AuthState) AuthState {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = st
	for _, ch := range b.subs {
		select {
		case ch <- st:
		default:
			// Replace the stale value so the subscriber always sees the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- st:
			default:
			}
		}
	}
	return st
}
