// Package main provides a CI-friendly smoke test for the Warden relay.
//
// It validates:
//   - handshake + subprotocol selection
//   - topic join echo
//   - session_check fanout to the other peer (sender excluded)
//   - session_active reply resolving a presence check as positive
//   - a lone active tab resolving its own check as negative
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"warden/presence"
	v1 "warden/shared/contracts/presence/v1"
)

func main() {
	var (
		wsURL   = flag.String("url", "ws://127.0.0.1:8080/ws", "WebSocket URL")
		origin  = flag.String("origin", "http://localhost", "Origin header to send (browser-like WS handshake)")
		topic   = flag.String("topic", v1.TopicSessionCheck, "Topic to join")
		window  = flag.Duration("window", presence.DefaultCheckTimeout, "Presence check window")
		timeout = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateWSURL(*wsURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	if err := validateOrigin(*origin); err != nil {
		fatalf("invalid -origin: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if *verbose {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	root := context.Background()

	a := mustDial(root, log, "A", *wsURL, *origin, *topic, *timeout)
	defer func() { _ = a.Close() }()

	b := mustDial(root, log, "B", *wsURL, *origin, *topic, *timeout)
	defer func() { _ = b.Close() }()

	if *verbose {
		fmt.Printf("connected: topic=%q origin=%q\n", *topic, *origin)
	}

	// Step 1: B holds an active session; A's check must resolve true.
	stopB := presence.NewResponder(log, b, func() bool { return true }).Start()

	checkCtx, cancel := context.WithTimeout(root, *timeout)
	got := presence.NewChecker(log, a, *window).Check(checkCtx)
	cancel()
	if !got {
		fatalf("step 1: active peer not detected within %v", *window)
	}

	// Step 2: B logs out; A's check must resolve false (sender exclusion means
	// A never answers itself).
	stopB()

	checkCtx, cancel = context.WithTimeout(root, *timeout)
	got = presence.NewChecker(log, a, *window).Check(checkCtx)
	cancel()
	if got {
		fatalf("step 2: lone tab resolved true; relay echoed the sender?")
	}

	fmt.Printf("OK: topic=%s window=%v\n", *topic, *window)
}

func mustDial(parent context.Context, log *slog.Logger, name, wsURL, origin, topic string, stepTimeout time.Duration) *presence.WSChannel {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	ch, err := presence.DialWSChannel(ctx, log, presence.WSChannelConfig{
		URL:    wsURL,
		Origin: origin,
		Topic:  topic,
	})
	if err != nil {
		fatalf("connect %s: %v", name, err)
	}
	return ch
}

func validateWSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	if strings.TrimSpace(u.Path) == "" {
		return errors.New("missing path")
	}
	return nil
}

func validateOrigin(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must be http/https, got: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("origin missing host")
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "SMOKE FAIL: "+format+"\n", args...)
	os.Exit(1)
}
