package notify

import (
	"io"
	"log/slog"
	"testing"
)

func newTestNotifier(alert AlertFunc) *MultiSessionNotifier {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMultiSessionNotifier(log, alert, "")
}

func TestNotifier_FirstTrueShowsOnce(t *testing.T) {
	t.Parallel()

	var alerts []string
	n := newTestNotifier(func(msg string) { alerts = append(alerts, msg) })

	n.Observe(false)
	if len(alerts) != 0 {
		t.Fatalf("false result raised an alert")
	}

	n.Observe(true)
	n.Observe(true)

	if len(alerts) != 1 {
		t.Fatalf("alerts=%d want 1", len(alerts))
	}
	if alerts[0] != DefaultMessage {
		t.Fatalf("message=%q want default", alerts[0])
	}
	if !n.Visible() {
		t.Fatalf("notice should be visible after first true result")
	}
}

func TestNotifier_DismissSuppressesForLifetime(t *testing.T) {
	t.Parallel()

	var alerts int
	n := newTestNotifier(func(string) { alerts++ })

	n.Observe(true)
	n.Dismiss()
	if n.Visible() {
		t.Fatalf("notice still visible after dismiss")
	}

	n.Observe(true)
	n.Observe(true)
	if alerts != 1 {
		t.Fatalf("alerts=%d want 1; dismiss must not re-arm", alerts)
	}
}

func TestNotifier_DismissBeforeAnyResult(t *testing.T) {
	t.Parallel()

	var alerts int
	n := newTestNotifier(func(string) { alerts++ })

	n.Dismiss()
	n.Observe(true)

	if alerts != 0 {
		t.Fatalf("alerts=%d want 0 after early dismiss", alerts)
	}
}

func TestNotifier_CustomMessage(t *testing.T) {
	t.Parallel()

	var got string
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := NewMultiSessionNotifier(log, func(msg string) { got = msg }, "another tab is signed in")

	n.Observe(true)
	if got != "another tab is signed in" {
		t.Fatalf("message=%q", got)
	}
}
