package service

import (
	"log/slog"

	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/tracer"
)

type serviceConfig struct {
	logger      *slog.Logger
	auditLogger *audit.Logger
	tracer      tracer.Tracer
}

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

func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}
