package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	transitionsTotal  *prometheus.CounterVec
	aiRequestDuration *prometheus.HistogramVec
	exportsTotal      *prometheus.CounterVec
}

// NewPrometheusRecorder registers the collectors on reg. Passing nil uses the default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		transitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brdgenius_wizard_transitions_total",
				Help: "Wizard step submissions by step and outcome",
			},
			[]string{"step", "outcome"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "brdgenius_ai_request_duration_seconds",
				Help:    "Duration of AI requests by operation and outcome",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"operation", "outcome"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "brdgenius_exports_total",
				Help: "Document exports by format and outcome",
			},
			[]string{"format", "outcome"},
		),
	}
}

func (p *PrometheusRecorder) ObserveTransition(step, outcome string) {
	p.transitionsTotal.WithLabelValues(step, outcome).Inc()
}

func (p *PrometheusRecorder) ObserveAIRequest(operation, outcome string, duration time.Duration) {
	p.aiRequestDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveExport(format, outcome string) {
	p.exportsTotal.WithLabelValues(format, outcome).Inc()
}
