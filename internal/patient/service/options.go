package service

import (
	"log/slog"

	"peegflow/pkg/platform/audit"
	txcontext "peegflow/pkg/platform/tx"
)

type serviceConfig struct {
	logger      *slog.Logger
	auditLogger *audit.Logger
	tx          txcontext.Runner
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

// WithTxRunner sets the unit of work runner. Defaults to an in-memory
// runner when omitted.
func WithTxRunner(tx txcontext.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}
