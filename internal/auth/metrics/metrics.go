package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeLocked  = "locked"
)

// Token domains.
const (
	DomainTenant   = "tenant"
	DomainPlatform = "platform"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	LoginAttempts     *prometheus.CounterVec
	LoginDurationMs   *prometheus.HistogramVec
	Resolutions       *prometheus.CounterVec
	Lockouts          prometheus.Counter
	PasswordsRehashed prometheus.Counter
	UsersCreated      *prometheus.CounterVec
}

// New registers and returns auth metrics collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_login_attempts_total",
			Help: "Login attempts by trust domain and outcome",
		}, []string{"domain", "outcome"}),
		LoginDurationMs: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peegflow_login_duration_ms",
			Help:    "Duration of login requests in milliseconds, dominated by password hashing",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"domain"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_principal_resolutions_total",
			Help: "Bearer token resolutions by trust domain and outcome",
		}, []string{"domain", "outcome"}),
		Lockouts: f.NewCounter(prometheus.CounterOpts{
			Name: "peegflow_login_lockouts_total",
			Help: "Accounts locked after repeated failed logins",
		}),
		PasswordsRehashed: f.NewCounter(prometheus.CounterOpts{
			Name: "peegflow_passwords_rehashed_total",
			Help: "Legacy password digests upgraded on login",
		}),
		UsersCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_users_created_total",
			Help: "Tenant accounts created, by role",
		}, []string{"role"}),
	}
}

func (m *Metrics) IncrementLogin(domain, outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(domain, outcome).Inc()
}

func (m *Metrics) ObserveLoginDuration(domain string, durationMs float64) {
	if m == nil {
		return
	}
	m.LoginDurationMs.WithLabelValues(domain).Observe(durationMs)
}

func (m *Metrics) IncrementResolution(domain, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(domain, outcome).Inc()
}

func (m *Metrics) IncrementLockouts() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}

func (m *Metrics) IncrementPasswordsRehashed() {
	if m == nil {
		return
	}
	m.PasswordsRehashed.Inc()
}

func (m *Metrics) IncrementUsersCreated(role string) {
	if m == nil {
		return
	}
	m.UsersCreated.WithLabelValues(role).Inc()
}
