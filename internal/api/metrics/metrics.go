// Package metrics defines the custom Prometheus metrics for the CRM
// backend. It is the single source of truth for metric names, labels, and
// help strings. All metrics register themselves with the default registry
// at package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", or "inactive"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SecuriaSessionsCreatedTotal counts successful Securia re-authentications.
var SecuriaSessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "securia_sessions_created_total",
		Help:      "Total number of Securia sessions created.",
	},
)

// AuditEventsWrittenTotal counts audit records that reached storage.
// Label:
//   - result: "ok" or "error"
var AuditEventsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_written_total",
		Help:      "Total number of audit records written, by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of audit records pending in each
// writer worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", ...)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each writer worker channel.",
	},
	[]string{"worker_id"},
)

// ClientAggregatesTotal counts client aggregate writes.
// Label:
//   - operation: "create", "update", or "delete"
var ClientAggregatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_aggregates_total",
		Help:      "Total number of client aggregate operations, by operation.",
	},
	[]string{"operation"},
)

// AttachmentUploadsTotal counts attachment uploads that completed.
var AttachmentUploadsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachment_uploads_total",
		Help:      "Total number of attachments uploaded.",
	},
)
