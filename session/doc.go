// Package session owns the per-tab session record and the bootstrap sequence
// that turns it into a published authentication state.
//
// A Session is one token plus one user record, held by exactly one tab and
// never shared across tabs. The Store is dumb storage with a two-key layout
// (token and user record under independent keys); all validation lives in the
// Bootstrapper, and every other component observes the published AuthState
// instead of reading storage directly.
//
// Cross-tab coordination is intentionally out of scope here; see the presence
// package.
package session
