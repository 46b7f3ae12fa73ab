package service

import (
	"log/slog"

	"peegflow/pkg/platform/audit"
	txcontext "peegflow/pkg/platform/tx"
)

type serviceConfig struct {
	logger      *slog.Logger
	auditLogger *audit.Logger
	metrics     *Metrics
	tx          txcontext.Runner
	admins      AdminProvisioner
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

// WithTxRunner sets the unit of work runner. Defaults to an in-memory
// runner when omitted.
func WithTxRunner(tx txcontext.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

// WithAdminProvisioner enables creating a first admin alongside a tenant.
func WithAdminProvisioner(p AdminProvisioner) Option {
	return func(c *serviceConfig) {
		c.admins = p
	}
}
