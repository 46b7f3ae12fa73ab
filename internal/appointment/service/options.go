package service

import (
	"log/slog"

	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/tracer"
)

type serviceConfig struct {
	logger      *slog.Logger
	auditLogger *audit.Logger
	metrics     *Metrics
	tracer      tracer.Tracer
	directory   PatientDirectory
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(c *serviceConfig) {
		c.auditLogger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTracer sets the span tracer. Defaults to a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

// WithPatientDirectory enables patient name and email on admin listings.
func WithPatientDirectory(d PatientDirectory) Option {
	return func(c *serviceConfig) {
		c.directory = d
	}
}
