package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics, registered on the default registry and exposed by the app's
// /metrics endpoint.
var (
	connectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "connections_total",
		Help:      "Accepted websocket connections.",
	})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "connections_active",
		Help:      "Currently open websocket connections.",
	})

	connectionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "connections_rejected_total",
		Help:      "Rejected upgrade attempts by reason.",
	}, []string{"reason"})

	topicMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "topic_members",
		Help:      "Current membership per topic.",
	}, []string{"topic"})

	envelopesRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "envelopes_relayed_total",
		Help:      "Envelopes fanned out to peers, by topic and type.",
	}, []string{"topic", "type"})

	envelopesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "envelopes_dropped_total",
		Help:      "Envelopes dropped under backpressure, by topic.",
	}, []string{"topic"})

	envelopesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Subsystem: "relay",
		Name:      "envelopes_rejected_total",
		Help:      "Inbound envelopes rejected, by reason.",
	}, []string{"reason"})
)
