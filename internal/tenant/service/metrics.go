package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	tenantsCreated prometheus.Counter
	tenantsUpdated *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		tenantsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "peegflow_tenants_created_total",
			Help: "Tenants created by platform operators or self-registration.",
		}),
		tenantsUpdated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_tenants_updated_total",
			Help: "Tenant patches applied, by resulting activity.",
		}, []string{"active"}),
	}
}

func (m *Metrics) IncrementTenantCreated() {
	if m == nil {
		return
	}
	m.tenantsCreated.Inc()
}

func (m *Metrics) IncrementTenantUpdated(active bool) {
	if m == nil {
		return
	}
	label := "false"
	if active {
		label = "true"
	}
	m.tenantsUpdated.WithLabelValues(label).Inc()
}
