package relay

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// sessionIDBytes gives 80 bits of entropy, enough to never collide within a
// relay's lifetime while keeping log lines short.
const sessionIDBytes = 10

// newSessionID mints the opaque per-connection id used for topic membership
// and sender exclusion. The id never leaves the relay; peers are anonymous
// to each other.
func newSessionID() string {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively unheard of; a monotonic
		// fallback keeps ids unique enough for membership bookkeeping.
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
