// Package v1 defines the Warden presence protocol v1 contract.
//
// This package is intentionally stable and dependency-light.
// It is shared between the relay daemon and clients to keep the wire
// protocol authoritative.
//
// The protocol carries presence, never identity: a conformant peer learns
// that *some* other peer holds an active session, not which account it is.
// Unknown payload fields MUST be ignored by conformant peers so that the
// protocol can grow without breaking older tabs.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is the protocol version identifier embedded into every envelope.
const Version = "v1"

// TopicSessionCheck is the well-known topic for the session-presence concern.
const TopicSessionCheck = "session-check"

// Subprotocol is the websocket subprotocol both ends must negotiate.
const Subprotocol = "warden.presence.v1"

// Type constants (wire-stable).
const (
	// TypeTopicJoin subscribes the connection to a topic (client -> relay)
	// and is echoed back on success.
	TypeTopicJoin = "topic_join"

	// TypeSessionCheck asks every other peer on the topic whether it holds
	// an active session (peer -> all other peers).
	TypeSessionCheck = "session_check"

	// TypeSessionActive is the reply sent by a peer that holds an active
	// session. It carries no identifying payload.
	TypeSessionActive = "session_active"

	// TypeError is a generic error envelope (relay -> peer).
	TypeError = "error"
)

// Envelope is the canonical wire wrapper.
type Envelope struct {
	V       string          `json:"v"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Topic   string          `json:"topic,omitempty"`
	TS      time.Time       `json:"ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate performs structural validation for an Envelope.
//
// It is strict on the version and type tags and deliberately lenient on the
// payload: presence messages carry no required payload, and extra fields from
// newer peers are ignored rather than rejected.
func (e Envelope) Validate() error {
	if strings.TrimSpace(e.V) == "" {
		return errors.New("missing field: v")
	}
	if e.V != Version {
		return fmt.Errorf("unsupported protocol version: %q", e.V)
	}
	if strings.TrimSpace(e.Type) == "" {
		return errors.New("missing field: type")
	}

	switch e.Type {
	case TypeTopicJoin,
		TypeSessionCheck,
		TypeSessionActive,
		TypeError:
		return nil
	default:
		return fmt.Errorf("unknown type: %q", e.Type)
	}
}

// ---- Payloads ----

// TopicJoinPayload requests membership in a topic.
type TopicJoinPayload struct {
	Topic string `json:"topic"`
}

// ErrorPayload is a generic error response payload.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
