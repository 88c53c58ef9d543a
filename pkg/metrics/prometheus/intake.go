// Package prometheus provides the Prometheus-backed implementations of the
// metrics interfaces declared next to their consumers. Constructors return
// nil when metrics are not enabled, which consumers treat as a no-op sink.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gatewatch/gatewatch/internal/server/api/handlers"
	"github.com/gatewatch/gatewatch/pkg/metrics"
)

// intakeMetrics is the Prometheus implementation of handlers.Metrics.
type intakeMetrics struct {
	passagesTotal    *prometheus.CounterVec
	matchesTotal     prometheus.Counter
	violationsByKind *prometheus.CounterVec
	alertsResolved   prometheus.Counter
	smsWebhooks      *prometheus.CounterVec
}

// NewIntakeMetrics creates a new Prometheus-backed intake metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewIntakeMetrics() handlers.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &intakeMetrics{
		passagesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatewatch_passages_ingested_total",
				Help: "Total number of passage intake attempts by source channel and outcome",
			},
			[]string{"source", "status"}, // status: "created", "duplicate", "rejected"
		),
		matchesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_matches_total",
				Help: "Total number of entry/exit pairs completed by the matcher",
			},
		),
		violationsByKind: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatewatch_violations_total",
				Help: "Total number of violations generated by kind",
			},
			[]string{"kind"}, // "speeding", "overstay"
		),
		alertsResolved: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_alerts_resolved_total",
				Help: "Total number of overstay alerts resolved, by exit passage or by hand",
			},
		),
		smsWebhooks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gatewatch_sms_webhook_deliveries_total",
				Help: "Total number of SMS gateway webhook deliveries by outcome",
			},
			[]string{"outcome"}, // "accepted", "duplicate", "rejected", "unauthorized"
		),
	}
}

// ObservePassageIntake counts one intake attempt by channel and outcome.
func (m *intakeMetrics) ObservePassageIntake(source, status string) {
	if m == nil {
		return
	}
	m.passagesTotal.WithLabelValues(source, status).Inc()
}

// ObserveMatch counts one completed pair.
func (m *intakeMetrics) ObserveMatch() {
	if m == nil {
		return
	}
	m.matchesTotal.Inc()
}

// ObserveViolation counts one generated violation by kind.
func (m *intakeMetrics) ObserveViolation(kind string) {
	if m == nil {
		return
	}
	m.violationsByKind.WithLabelValues(kind).Inc()
}

// ObserveAlertsResolved counts overstay alerts closed.
func (m *intakeMetrics) ObserveAlertsResolved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.alertsResolved.Add(float64(n))
}

// ObserveSMSWebhook counts one webhook delivery by outcome.
func (m *intakeMetrics) ObserveSMSWebhook(outcome string) {
	if m == nil {
		return
	}
	m.smsWebhooks.WithLabelValues(outcome).Inc()
}
