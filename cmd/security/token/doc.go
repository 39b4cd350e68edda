// Package token provides token hashing primitives for Warden.
//
// Raw tokens must never appear in logs or diagnostics. This package is the
// single source of truth for how tokens are reduced to loggable fingerprints
// and stable hex digests.
package token
