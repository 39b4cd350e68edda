// Package notify surfaces presence results to the user.
package notify

import (
	"log/slog"
	"os"
	"sync"
)

// AlertFunc shows a non-blocking, dismissible notice.
type AlertFunc func(message string)

// DefaultMessage is what the notice shows when the caller does not override it.
const DefaultMessage = "Ya tienes una sesión activa en otra pestaña."

// MultiSessionNotifier turns presence-check results into at most one
// user-visible warning per tab lifetime. Once the user dismisses it, further
// positive results are suppressed; re-arming would just nag.
type MultiSessionNotifier struct {
	log   *slog.Logger
	alert AlertFunc
	msg   string

	mu        sync.Mutex
	shown     bool
	dismissed bool
}

// NewMultiSessionNotifier constructs a notifier. An empty message gets
// DefaultMessage.
func NewMultiSessionNotifier(log *slog.Logger, alert AlertFunc, message string) *MultiSessionNotifier {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if message == "" {
		message = DefaultMessage
	}
	return &MultiSessionNotifier{log: log, alert: alert, msg: message}
}

// Observe feeds one presence-check result in. Only the first true result
// raises the alert; false results and post-dismiss results are no-ops.
func (n *MultiSessionNotifier) Observe(multiple bool) {
	if !multiple {
		return
	}

	n.mu.Lock()
	if n.shown || n.dismissed {
		n.mu.Unlock()
		return
	}
	n.shown = true
	n.mu.Unlock()

	n.log.Info("notify.multisession.shown")
	if n.alert != nil {
		n.alert(n.msg)
	}
}

// Dismiss records the user's dismissal and suppresses all further alerts for
// this notifier's lifetime.
func (n *MultiSessionNotifier) Dismiss() {
	n.mu.Lock()
	n.dismissed = true
	n.mu.Unlock()
	n.log.Debug("notify.multisession.dismissed")
}

// Visible reports whether the notice is currently showing.
func (n *MultiSessionNotifier) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shown && !n.dismissed
}
