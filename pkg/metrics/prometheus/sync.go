package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gatewatch/gatewatch/pkg/agent/syncer"
	"github.com/gatewatch/gatewatch/pkg/metrics"
)

// syncMetrics is the Prometheus implementation of syncer.Metrics.
type syncMetrics struct {
	passesTotal   prometheus.Counter
	offlinePasses prometheus.Counter
	pushedTotal   prometheus.Counter
	retriedTotal  prometheus.Counter
	failedTotal   prometheus.Counter
	pulledTotal   prometheus.Counter
	smsTotal      prometheus.Counter
	passDuration  prometheus.Histogram
	queueDepth    *prometheus.GaugeVec
}

// NewSyncMetrics creates a new Prometheus-backed sync metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewSyncMetrics() syncer.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &syncMetrics{
		passesTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_passes_total",
				Help: "Total number of sync passes completed",
			},
		),
		offlinePasses: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_offline_passes_total",
				Help: "Total number of sync passes that could not reach the server",
			},
		),
		pushedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_passages_pushed_total",
				Help: "Total number of passages delivered to the server",
			},
		),
		retriedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_retries_total",
				Help: "Total number of deliveries returned to the queue for retry",
			},
		),
		failedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_failures_total",
				Help: "Total number of queue entries parked as failed",
			},
		),
		pulledTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_passages_pulled_total",
				Help: "Total number of remote passages pulled into the local cache",
			},
		),
		smsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_sync_sms_fallback_total",
				Help: "Total number of passages handed to the SMS fallback channel",
			},
		),
		passDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "gatewatch_sync_pass_duration_milliseconds",
				Help: "Duration of sync passes in milliseconds",
				Buckets: []float64{
					10,    // 10ms - idle pass
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s
					5000,  // 5s
					15000, // 15s - one slow delivery
					60000, // 1m - large backlog
				},
			},
		),
		queueDepth: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gatewatch_sync_queue_depth",
				Help: "Number of sync queue entries by status",
			},
			[]string{"status"},
		),
	}
}

// ObserveCycle records one completed sync pass.
func (m *syncMetrics) ObserveCycle(r syncer.CycleResult, duration time.Duration) {
	if m == nil {
		return
	}
	m.passesTotal.Inc()
	if !r.Online {
		m.offlinePasses.Inc()
	}
	m.pushedTotal.Add(float64(r.Pushed))
	m.retriedTotal.Add(float64(r.Retried))
	m.failedTotal.Add(float64(r.Failed))
	m.pulledTotal.Add(float64(r.Pulled))
	m.smsTotal.Add(float64(r.SMSSent))
	m.passDuration.Observe(float64(duration.Milliseconds()))
}

// SetQueueDepth records the current depth of one queue status.
func (m *syncMetrics) SetQueueDepth(status string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(status).Set(float64(depth))
}
