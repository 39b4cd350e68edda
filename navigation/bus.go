package navigation

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"warden/session"
)

// State is the document attached to a history push so the destination page
// can open the right detail view.
type State struct {
	ID               int64  `json:"id"`
	ShowDetail       bool   `json:"showDetail"`
	ViewType         string `json:"viewType"`
	FromNotification bool   `json:"fromNotification"`
	NotificationID   string `json:"notificationId"`
}

// Event is what subscribers receive for every dispatched target.
// AlreadyHere marks a dispatch whose rewritten route equals the current
// location: no history push happened, but in-page listeners still get the
// event so they can open the detail panel.
type Event struct {
	Route       string
	State       State
	AlreadyHere bool
}

// Navigator performs the actual history push. Push semantics, never replace:
// a notification jump is forward navigation.
type Navigator interface {
	Push(route string, st State)
}

// Locator reports the current location path.
type Locator interface {
	Current() string
}

// RoleFunc returns the acting role at dispatch time. Roles can change within
// a tab's lifetime (re-login), so the Bus never caches it.
type RoleFunc func() session.Role

// ConsumeFunc flips a notification to read upstream.
type ConsumeFunc func(notificationID string) error

// maxPending caps the queue of events held for a not-yet-mounted subscriber.
// When full, the oldest event is dropped: a user who clicked through many
// notifications before any page mounted only cares about the recent ones.
const maxPending = 32

// Bus dispatches notification navigation. Safe for concurrent use.
type Bus struct {
	log     *slog.Logger
	role    RoleFunc
	nav     Navigator
	loc     Locator
	consume ConsumeFunc

	mu         sync.Mutex
	nextSub    int
	subs       map[int]func(Event)
	invalidFns map[int]func(notificationID, reason string)
	pending    []Event
}

// NewBus constructs a Bus. nav and loc must be non-nil; consume may be nil
// when the caller has no read-state backend.
func NewBus(log *slog.Logger, role RoleFunc, nav Navigator, loc Locator, consume ConsumeFunc) *Bus {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Bus{
		log:        log,
		role:       role,
		nav:        nav,
		loc:        loc,
		consume:    consume,
		subs:       make(map[int]func(Event)),
		invalidFns: make(map[int]func(string, string)),
	}
}

// RequestNavigation rewrites the target's route for the acting role, then
// either pushes history state or, when the tab is already at the target,
// emits the local event only. It never fails: a malformed id degrades to 0
// and the dispatch proceeds.
func (b *Bus) RequestNavigation(t Target) {
	role := b.role()
	route := b.rewriteRoute(role, t.Route)

	id, ok := coerceID(t.Params.ID)
	if !ok {
		b.log.Warn("navigation.id.malformed",
			"raw_id", t.Params.ID,
			"route", route,
		)
	}

	view := t.Params.ViewType
	if view == "" {
		view = ViewForm
	}
	st := State{
		ID:               id,
		ShowDetail:       true,
		ViewType:         view,
		FromNotification: true,
		NotificationID:   t.Params.NotificationID,
	}

	here := b.loc.Current() == route
	ev := Event{Route: route, State: st, AlreadyHere: here}

	if here {
		b.log.Debug("navigation.already_here", "route", route)
	} else {
		b.nav.Push(route, st)
		b.log.Info("navigation.push",
			"route", route,
			"view_type", view,
			"notification_id", st.NotificationID,
		)
	}

	b.emit(ev)
}

// MarkConsumed flips the notification to read. Explicitly a caller call, not
// part of RequestNavigation, so "view without marking read" stays possible.
func (b *Bus) MarkConsumed(notificationID string) error {
	if b.consume == nil {
		return nil
	}
	if err := b.consume(notificationID); err != nil {
		b.log.Warn("navigation.consume.fail", "notification_id", notificationID, "err", err)
		return err
	}
	return nil
}

// Invalidate purges the notification's queued targets and tells subscribers
// to drop it. Called when a deep link turns out to point at a deleted or
// inaccessible entity.
func (b *Bus) Invalidate(notificationID, reason string) {
	b.mu.Lock()
	kept := b.pending[:0]
	for _, ev := range b.pending {
		if ev.State.NotificationID != notificationID {
			kept = append(kept, ev)
		}
	}
	purged := len(b.pending) - len(kept)
	b.pending = kept
	fns := make([]func(string, string), 0, len(b.invalidFns))
	for _, fn := range b.invalidFns {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	b.log.Info("navigation.invalidate",
		"notification_id", notificationID,
		"reason", reason,
		"purged", purged,
	)
	for _, fn := range fns {
		fn(notificationID, reason)
	}
}

// Subscribe registers fn for dispatched events and returns a cancel func.
// Events dispatched before any subscriber attached are replayed to the first
// subscriber; pages often mount after the notification click fires.
func (b *Bus) Subscribe(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	replay := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, ev := range replay {
		fn(ev)
	}

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// SubscribeInvalid registers fn for invalidation notices.
func (b *Bus) SubscribeInvalid(fn func(notificationID, reason string)) (cancel func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.invalidFns[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.invalidFns, id)
		b.mu.Unlock()
	}
}

func (b *Bus) emit(ev Event) {
	b.mu.Lock()
	if len(b.subs) == 0 {
		if len(b.pending) >= maxPending {
			dropped := b.pending[0]
			b.pending = append(b.pending[:0], b.pending[1:]...)
			b.log.Warn("navigation.pending.drop",
				"route", dropped.Route,
				"notification_id", dropped.State.NotificationID,
			)
		}
		b.pending = append(b.pending, ev)
		b.mu.Unlock()
		return
	}
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// rewriteRoute maps a target route into the acting role's namespace.
//
// The rewrite list is deliberately partial: only the offers and projects
// families get the admin prefix. Other routes pass through unchanged for
// admin-access roles and are logged so an owner can extend the mapping.
// Plain users get a generic admin-prefix strip, so an admin-shaped deep link
// still lands them on their own copy of the page.
func (b *Bus) rewriteRoute(role session.Role, route string) string {
	if role.AdminAccess() {
		if strings.HasPrefix(route, "/admin/") {
			return route
		}
		switch {
		case strings.HasPrefix(route, RouteOffers):
			return "/admin" + route
		case strings.HasPrefix(route, RouteProjects):
			return "/admin" + route
		default:
			b.log.Warn("navigation.rewrite.unmapped", "route", route, "role", string(role))
			return route
		}
	}

	if strings.HasPrefix(route, "/admin/") {
		return strings.TrimPrefix(route, "/admin")
	}
	return route
}
