package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintHexLen is the number of hex chars kept in a log fingerprint.
// Long enough to correlate log lines, far too short to reverse.
const fingerprintHexLen = 12

// HashSHA256Hex returns a SHA-256 hex digest of s (64 chars).
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// FingerprintSHA256Hex returns a short, stable, non-reversible fingerprint of
// a token for log correlation. An empty token fingerprints as the empty string
// so absent tokens stay visibly absent in logs.
func FingerprintSHA256Hex(tok string) string {
	if tok == "" {
		return ""
	}
	return HashSHA256Hex(tok)[:fingerprintHexLen]
}
