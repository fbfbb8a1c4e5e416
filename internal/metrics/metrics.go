// Package metrics exposes Prometheus collectors for the directory engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login attempts by outcome: success, bad_credential,
	// locked, or inactive.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dirgate_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// Lockouts counts accounts locked by the failed-attempt policy.
	Lockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dirgate_lockouts_total",
		Help: "Accounts locked after exceeding the failed-attempt threshold.",
	})

	// AuthorizationDenied counts authorization checks that failed.
	AuthorizationDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dirgate_authorization_denied_total",
		Help: "Authorization checks denied.",
	})

	// AuditWriteFailures counts audit records that could not be persisted.
	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dirgate_audit_write_failures_total",
		Help: "Audit records that failed to persist.",
	})

	// AuditDegraded reports whether the audit recorder has dropped a record
	// since startup (1 = degraded).
	AuditDegraded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dirgate_audit_degraded",
		Help: "1 when at least one audit record failed to persist.",
	})

	// JanitorSweeps counts background sweep executions by kind.
	JanitorSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dirgate_janitor_sweeps_total",
		Help: "Background janitor sweeps by kind.",
	}, []string{"kind"})
)

// Login outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeBadCredential = "bad_credential"
	OutcomeLocked        = "locked"
	OutcomeInactive      = "inactive"
)
