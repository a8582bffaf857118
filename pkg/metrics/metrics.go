package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	documentIntake = "document_intake"

	// Pipeline metrics
	documentsProcessedTotal = "documents_processed_total"
	failureWritesDropped    = "failure_writes_dropped_total"
	ocrRequestDuration      = "ocr_request_duration_seconds"

	// Labels
	outcomeLabel = "outcome"
)

var documentsProcessedLabels = []string{
	outcomeLabel,
}

/**
* Metrics definition
**/
var documentsProcessedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: documentIntake,
		Name:      documentsProcessedTotal,
		Help:      "number of processed document jobs partitioned by terminal outcome",
	},
	documentsProcessedLabels,
)

var failureWritesDroppedMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: documentIntake,
		Name:      failureWritesDropped,
		Help:      "number of failed-status writes that themselves failed and were dropped",
	},
)

var ocrRequestDurationMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Subsystem: documentIntake,
		Name:      ocrRequestDuration,
		Help:      "duration of OCR detect-text calls",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
	},
)

func IncreaseDocumentsProcessedMetric(outcome string) {
	labels := prometheus.Labels{
		outcomeLabel: outcome,
	}
	documentsProcessedTotalMetric.With(labels).Inc()
}

func IncreaseFailureWritesDroppedMetric() {
	failureWritesDroppedMetric.Inc()
}

func ObserveOcrRequestDuration(d time.Duration) {
	ocrRequestDurationMetric.Observe(d.Seconds())
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(documentsProcessedTotalMetric)
	prometheus.MustRegister(failureWritesDroppedMetric)
	prometheus.MustRegister(ocrRequestDurationMetric)
}
