package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// Metrics holds all Prometheus metrics for the user switcher.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AdminChecks        *prometheus.CounterVec
	HandshakeSteps     *prometheus.CounterVec
	CodeAuthorizations *prometheus.CounterVec
	UpstreamLatency    *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdminChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userswitcher_admin_checks_total",
			Help: "Total number of admin verifications by outcome",
		}, []string{"outcome"}),
		HandshakeSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userswitcher_handshake_steps_total",
			Help: "Total number of quick connect handshake steps by step and outcome",
		}, []string{"step", "outcome"}),
		CodeAuthorizations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "userswitcher_code_authorizations_total",
			Help: "Total number of relayed quick connect code authorizations by outcome",
		}, []string{"outcome"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userswitcher_upstream_request_seconds",
			Help:    "Latency of host API requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) ObserveAdminCheck(outcome string) {
	if m == nil {
		return
	}
	m.AdminChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHandshakeStep(step, outcome string) {
	if m == nil {
		return
	}
	m.HandshakeSteps.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) ObserveCodeAuthorization(outcome string) {
	if m == nil {
		return
	}
	m.CodeAuthorizations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpstream(endpoint string, started time.Time) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
