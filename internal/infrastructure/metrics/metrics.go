package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks the onboarding funnel. Collectors live on a private registry
// so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted   prometheus.Counter
	SessionsCompleted prometheus.Counter
	SessionsExpired   prometheus.Counter
	StepsCompleted    *prometheus.CounterVec
	StepsRejected     *prometheus.CounterVec
	SMSSent           *prometheus.CounterVec
	ProfileCommits    *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
}

// New creates a Metrics instance with all onboarding collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_started_total",
			Help: "Total number of onboarding sessions opened",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_completed_total",
			Help: "Total number of onboarding sessions that reached the dashboard",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_sessions_expired_total",
			Help: "Total number of idle onboarding sessions dropped by the sweeper",
		}),
		StepsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_steps_completed_total",
			Help: "Accepted step submissions by step",
		}, []string{"step"}),
		StepsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_steps_rejected_total",
			Help: "Rejected step submissions by step and reason",
		}, []string{"step", "reason"}),
		SMSSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_sms_sent_total",
			Help: "Verification SMS dispatch attempts by result",
		}, []string{"result"}),
		ProfileCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_profile_commits_total",
			Help: "Profile commit attempts by result",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "onboarding_active_sessions",
			Help: "Onboarding sessions currently held in memory",
		}),
	}
	m.registry.MustRegister(
		m.SessionsStarted, m.SessionsCompleted, m.SessionsExpired,
		m.StepsCompleted, m.StepsRejected, m.SMSSent, m.ProfileCommits, m.ActiveSessions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
