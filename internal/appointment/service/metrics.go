package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"peegflow/internal/appointment/models"
)

// Booking outcomes.
const (
	OutcomeBooked   = "booked"
	OutcomeConflict = "conflict"
)

type Metrics struct {
	slotsGenerated prometheus.Counter
	bookings       *prometheus.CounterVec
	transitions    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		slotsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "peegflow_appointment_slots_generated_total",
			Help: "Available slots inserted by bulk generation.",
		}),
		bookings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_appointment_bookings_total",
			Help: "Booking attempts by outcome.",
		}, []string{"outcome"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_appointment_transitions_total",
			Help: "Status transitions applied, by target status.",
		}, []string{"to"}),
	}
}

func (m *Metrics) AddSlotsGenerated(n int) {
	if m == nil {
		return
	}
	m.slotsGenerated.Add(float64(n))
}

func (m *Metrics) IncrementBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTransition(to models.Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}
