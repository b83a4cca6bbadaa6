// Package metrics defines and registers all custom Prometheus metrics for the
// chat API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry at import time and
// are exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ── Conversation metrics ──────────────────────────────────────────────────────

// MessagesSentTotal counts persisted messages.
// Label:
//   - kind: "direct" or "group"
var MessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages persisted, by addressing kind.",
	},
	[]string{"kind"},
)

// MessagesDeletedTotal counts sender-initiated message deletions.
var MessagesDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_deleted_total",
		Help:      "Total number of messages hard-deleted by their sender.",
	},
)

// ── Group metrics ─────────────────────────────────────────────────────────────

// GroupsCreatedTotal counts newly created groups.
var GroupsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "groups_created_total",
		Help:      "Total number of groups created.",
	},
)

// GroupsDeletedTotal counts group deletions, explicit and cascading.
// Label:
//   - reason: "explicit" or "drained"
var GroupsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "groups_deleted_total",
		Help:      "Total number of groups deleted, by reason.",
	},
	[]string{"reason"},
)

// ── Broker metrics ────────────────────────────────────────────────────────────

// BrokerConnections tracks currently registered WebSocket sessions.
var BrokerConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broker_connections",
		Help:      "Number of WebSocket sessions currently registered with the hub.",
	},
)

// BrokerEventsPublished counts events accepted by the fan-out dispatcher.
// Label:
//   - event: "private_message", "group_message", or "message_deleted"
var BrokerEventsPublished = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broker_events_published_total",
		Help:      "Total number of events accepted for fan-out, by event kind.",
	},
	[]string{"event"},
)

// BrokerEventsDelivered counts per-session deliveries.
// Label:
//   - event: event kind as above
var BrokerEventsDelivered = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broker_events_delivered_total",
		Help:      "Total number of per-session event deliveries, by event kind.",
	},
	[]string{"event"},
)

// BrokerEventsDropped counts events discarded because a worker buffer was full.
var BrokerEventsDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broker_events_dropped_total",
		Help:      "Total number of events dropped before fan-out due to backpressure.",
	},
)
