package server

import (
	"time"

	"github.com/irahardianto/prreview/internal/engine/review"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const outcomeOK = "ok"

// Metrics holds the review counters. Each Server owns its own registry so
// tests can create servers freely.
type Metrics struct {
	registry *prometheus.Registry
	reviews  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the review collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		reviews: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prreview_reviews_total",
			Help: "Review requests by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prreview_review_duration_seconds",
			Help:    "Time spent serving a review request, including the model call.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		}),
	}

	for _, outcome := range []string{
		outcomeOK,
		string(review.CategoryInputRejected),
		string(review.CategoryUnavailable),
		string(review.CategoryUpstream),
	} {
		m.reviews.WithLabelValues(outcome)
	}
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	m.reviews.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
