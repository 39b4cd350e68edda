// Package presence implements the cross-tab session-presence protocol.
//
// Each tab publishes a session_check on the well-known topic and arms a short
// timer; every other tab holding an active session answers session_active.
// Any reply before the deadline resolves the check true, silence resolves it
// false. The protocol is symmetric, payload-free and tolerant of tabs closing
// mid-check: the timeout bounds the worst case, and a missing reply is a
// negative result, never an error.
//
// There is no central registry and no leader: the Channel abstraction only
// promises fire-and-forget fanout to every other peer. LocalBus provides that
// in-process; WSChannel speaks the shared v1 contract to the relay daemon.
package presence
