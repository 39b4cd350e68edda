package v1

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewEnvelopeID returns a ULID used as envelope id.
// ULID is preferable to random hex for tracing and ordering in logs.
func NewEnvelopeID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// NewEnvelope builds an envelope of the given type on a topic.
// The id is best-effort: an empty id is valid on the wire.
func NewEnvelope(typ, topic string, ts time.Time) Envelope {
	id, _ := NewEnvelopeID(ts)
	return Envelope{
		V:     Version,
		Type:  typ,
		ID:    id,
		Topic: topic,
		TS:    ts,
	}
}
