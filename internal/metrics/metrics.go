package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for posting.
type Metrics struct {
	PostsTotal             *prometheus.CounterVec
	PostDuration           *prometheus.HistogramVec
	CredentialLoadFailures prometheus.Counter
}

// New registers and returns posting collectors on reg. A nil reg registers
// on the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		PostsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "socialhub_posts_total",
			Help: "Total number of platform post attempts, labeled by platform and outcome",
		}, []string{"platform", "outcome"}),
		PostDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socialhub_post_duration_seconds",
			Help:    "Duration of a single platform post in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"platform"}),
		CredentialLoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "socialhub_credential_load_failures_total",
			Help: "Total number of post requests that could not load credentials",
		}),
	}
}

// ObservePost records one adapter call. outcome is an error kind such as
// "ok", "auth" or "network".
func (m *Metrics) ObservePost(platform, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.PostsTotal.WithLabelValues(platform, outcome).Inc()
	m.PostDuration.WithLabelValues(platform).Observe(d.Seconds())
}

func (m *Metrics) IncrementCredentialLoadFailures() {
	if m == nil {
		return
	}
	m.CredentialLoadFailures.Inc()
}
