package service

import (
	"log/slog"

	"peegflow/pkg/platform/audit"
)

type serviceConfig struct {
	logger      *slog.Logger
	auditLogger *audit.Logger
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
