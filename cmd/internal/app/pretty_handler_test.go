package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandler_PlainOutput(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	log := slog.New(h)

	log.Info("server.start", "addr", "127.0.0.1:8080", "status", 200)

	out := buf.String()
	if !strings.Contains(out, "lvl=[INFO]") {
		t.Fatalf("missing level tag: %q", out)
	}
	if !strings.Contains(out, "msg=server.start") {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "addr=127.0.0.1:8080") {
		t.Fatalf("missing attr: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color escapes in colorless mode: %q", out)
	}
}

func TestPrettyHandler_RemapsKeys(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, nil, false)
	log := slog.New(h)

	log.Info("http.request", "duration_ms", int64(42), "status_class", "2xx")

	out := buf.String()
	if !strings.Contains(out, "duration=42ms") {
		t.Fatalf("duration not remapped: %q", out)
	}
	if !strings.Contains(out, "class=2xx") {
		t.Fatalf("status_class not remapped: %q", out)
	}
}

func TestPrettyHandler_GroupsPrefixKeys(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	h := newPrettyHandler(&buf, nil, false)
	log := slog.New(h).WithGroup("req")

	log.Info("event", "id", "abc")

	if !strings.Contains(buf.String(), "req.id=abc") {
		t.Fatalf("group prefix missing: %q", buf.String())
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := newPrettyHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelWarn}, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error disabled at warn level")
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "", want: `""`},
		{in: "two words", want: `"two words"`},
		{in: `has"quote`, want: `"has\"quote"`},
	}
	for _, tc := range cases {
		if got := quoteIfNeeded(tc.in); got != tc.want {
			t.Fatalf("quoteIfNeeded(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestValueToInt64(t *testing.T) {
	t.Parallel()

	if n, ok := valueToInt64(slog.IntValue(7)); !ok || n != 7 {
		t.Fatalf("int: (%d,%v)", n, ok)
	}
	if n, ok := valueToInt64(slog.StringValue("42")); !ok || n != 42 {
		t.Fatalf("numeric string: (%d,%v)", n, ok)
	}
	if _, ok := valueToInt64(slog.StringValue("nope")); ok {
		t.Fatalf("non-numeric string accepted")
	}
	if _, ok := valueToInt64(slog.TimeValue(time.Now())); ok {
		t.Fatalf("time accepted")
	}
}

func TestLevelTag_Colorless(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "[DEBUG]"},
		{slog.LevelInfo, "[INFO]"},
		{slog.LevelWarn, "[WARN]"},
		{slog.LevelError, "[ERROR]"},
	}
	for _, tc := range cases {
		if got := levelTag(tc.level, false); got != tc.want {
			t.Fatalf("levelTag(%v)=%q want=%q", tc.level, got, tc.want)
		}
	}
}
