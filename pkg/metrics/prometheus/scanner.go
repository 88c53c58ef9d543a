package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gatewatch/gatewatch/pkg/metrics"
	"github.com/gatewatch/gatewatch/pkg/server/scanner"
)

// scannerMetrics is the Prometheus implementation of scanner.Metrics.
type scannerMetrics struct {
	scansTotal      prometheus.Counter
	passagesScanned prometheus.Counter
	alertsCreated   prometheus.Counter
	scanDuration    prometheus.Histogram
}

// NewScannerMetrics creates a new Prometheus-backed scanner metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewScannerMetrics() scanner.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &scannerMetrics{
		scansTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_overstay_scans_total",
				Help: "Total number of overstay scan passes completed",
			},
		),
		passagesScanned: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_overstay_passages_scanned_total",
				Help: "Total number of overdue unmatched passages examined by the scanner",
			},
		),
		alertsCreated: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gatewatch_overstay_alerts_created_total",
				Help: "Total number of overstay alerts created by the scanner",
			},
		),
		scanDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "gatewatch_overstay_scan_duration_milliseconds",
				Help: "Duration of overstay scan passes in milliseconds",
				Buckets: []float64{
					10,    // 10ms - empty scan
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s
					5000,  // 5s - large backlog
					30000, // 30s
				},
			},
		),
	}
}

// ObserveScan records one completed scan pass.
func (m *scannerMetrics) ObserveScan(scanned, created int, duration time.Duration) {
	if m == nil {
		return
	}
	m.scansTotal.Inc()
	m.passagesScanned.Add(float64(scanned))
	m.alertsCreated.Add(float64(created))
	m.scanDuration.Observe(float64(duration.Milliseconds()))
}
