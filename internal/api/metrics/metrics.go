// Package metrics defines and registers all custom Prometheus metrics for the
// messagely API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the echoprometheus handler at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "messagely"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures bcrypt work.
// Label:
//   - op: "hash" or "compare"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hashing and comparison.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// ── Login stamp metrics ───────────────────────────────────────────────────────

// LoginQueueDepth tracks pending last-login stamps in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var LoginQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_queue_depth",
		Help:      "Current number of last-login stamps pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// LoginStampErrorsTotal counts last-login stamps that could not be persisted.
var LoginStampErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_stamp_errors_total",
		Help:      "Total number of last-login stamps that failed to persist.",
	},
)

// ── Message metrics ───────────────────────────────────────────────────────────

// MessagesSentTotal counts newly created messages.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages sent.",
	},
)

// MessagesReadTotal counts successful mark-read calls, including no-ops on
// messages that were already read.
var MessagesReadTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_read_total",
		Help:      "Total number of mark-read operations.",
	},
)

// IdempotentReplaysTotal counts sends answered from the idempotency store.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of message sends replayed from an Idempotency-Key.",
	},
)

// AccessDeniedTotal counts requests rejected by an access rule.
// Label:
//   - operation: "view", "mark_read", "send" or "account"
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Total number of operations rejected by an access rule.",
	},
	[]string{"operation"},
)
