package filter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File outcomes counted by Metrics.
const (
	outcomeLinted = "linted"
	outcomeCached = "cached"
	outcomeCopied = "copied"
)

// Metrics counts filter activity. A nil *Metrics records nothing.
type Metrics struct {
	files    *prometheus.CounterVec
	findings prometheus.Counter
	builds   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the filter's collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coffeefreight",
			Name:      "files_total",
			Help:      "Files processed, by outcome (linted, cached, copied).",
		}, []string{"outcome"}),
		findings: f.NewCounter(prometheus.CounterOpts{
			Namespace: "coffeefreight",
			Name:      "findings_total",
			Help:      "Lint findings reported, including replayed cache entries.",
		}),
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coffeefreight",
			Name:      "builds_total",
			Help:      "Completed builds, by result.",
		}, []string{"result"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "coffeefreight",
			Name:      "build_duration_seconds",
			Help:      "Wall time of a build.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *Metrics) file(outcome string, findings int) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(outcome).Inc()
	if findings > 0 {
		m.findings.Add(float64(findings))
	}
}

func (m *Metrics) build(seconds float64, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.builds.WithLabelValues(result).Inc()
	m.duration.Observe(seconds)
}
