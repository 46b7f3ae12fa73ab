// Package tracer is a small tracing abstraction used by services that want
// spans without importing OpenTelemetry directly.
//
// Implementations:
//   - NoopTracer: for tests and when tracing is disabled
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanAppointmentBook,
//	    tracer.String(tracer.AttrTenantID, tenantID.String()),
//	)
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanAppointmentGenerate  = "appointment.generate"
	SpanAppointmentBook      = "appointment.book"
	SpanAppointmentCancel    = "appointment.cancel"
	SpanAppointmentSetStatus = "appointment.set_status"
	SpanFinanceSummary       = "finance.summary"
)

// Attribute keys.
const (
	AttrTenantID      = "tenant.id"
	AttrAppointmentID = "appointment.id"
	AttrActorRole     = "actor.role"
	AttrStatusFrom    = "status.from"
	AttrStatusTo      = "status.to"
	AttrSlotsPlanned  = "slots.planned"
	AttrSlotsCreated  = "slots.created"
	AttrPeriod        = "finance.period"
	AttrAppointments  = "finance.appointments"
	AttrExpenses      = "finance.expenses"
)

// Event names.
const (
	EventConflict = "conflict"
)
