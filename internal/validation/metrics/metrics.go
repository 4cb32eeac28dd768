package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
	ValidatorAnomalies *prometheus.CounterVec
	ExtractionFailures prometheus.Counter
	AnalysisFailures   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poagate_validations_total",
			Help: "Total number of document validations by overall status",
		}, []string{"overall"}),
		ValidationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "poagate_validation_duration_seconds",
			Help:    "Wall-clock duration of one validation orchestration",
			Buckets: prometheus.DefBuckets,
		}),
		ValidatorAnomalies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "poagate_validator_anomalies_total",
			Help: "Rule validators that panicked and were forced to not_checked",
		}, []string{"category"}),
		ExtractionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poagate_extraction_failures_total",
			Help: "Text extraction calls that failed fatally",
		}),
		AnalysisFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "poagate_image_analysis_failures_total",
			Help: "Image quality analyses that failed (non-fatal)",
		}),
	}
}

func (m *Metrics) ObserveValidation(overall string, d time.Duration) {
	m.ValidationsTotal.WithLabelValues(overall).Inc()
	m.ValidationDuration.Observe(d.Seconds())
}

func (m *Metrics) IncValidatorAnomaly(category string) {
	m.ValidatorAnomalies.WithLabelValues(category).Inc()
}

func (m *Metrics) IncExtractionFailure() {
	m.ExtractionFailures.Inc()
}

func (m *Metrics) IncAnalysisFailure() {
	m.AnalysisFailures.Inc()
}
