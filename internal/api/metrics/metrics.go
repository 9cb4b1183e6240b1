// Package metrics defines and registers all custom Prometheus metrics for
// the auth service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Credential metrics ────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "duplicate", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginAttemptsTotal counts login attempts. Failures are not broken down
// further: unknown emails and wrong passwords are deliberately
// indistinguishable.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PasswordResetsTotal counts password reset activity.
// Labels:
//   - stage:  "requested" or "completed"
//   - result: "ok" or "rejected"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset requests and completions.",
	},
	[]string{"stage", "result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsCreatedTotal counts minted session tokens.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of session tokens issued.",
	},
)

// SessionsDestroyedTotal counts explicit logouts.
var SessionsDestroyedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_destroyed_total",
		Help:      "Total number of sessions destroyed by logout.",
	},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of auth events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsRecordedTotal counts audit events successfully persisted.
// Label:
//   - action: the auth action recorded (e.g. "login_succeeded")
var AuditEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_recorded_total",
		Help:      "Total number of auth events written to the audit trail.",
	},
	[]string{"action"},
)

// AuditEventsDroppedTotal counts audit events discarded because a worker
// queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of auth events dropped due to a full audit queue.",
	},
)
