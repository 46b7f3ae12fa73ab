// Package service enforces per-IP request budgets on unauthenticated
// endpoints. Budgets are sliding windows held in a Store (Redis when
// configured, otherwise in process).
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"peegflow/internal/ratelimit/models"
	"peegflow/pkg/platform/privacy"
	"peegflow/pkg/requestcontext"
)

type Store interface {
	Take(ctx context.Context, key string, limit models.Limit, now time.Time) (models.Result, error)
}

type Metrics struct {
	decisions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "peegflow_rate_limit_decisions_total",
			Help: "Rate limit decisions by endpoint class and outcome",
		}, []string{"class", "outcome"}),
	}
}

func (m *Metrics) record(class models.Class, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(string(class), outcome).Inc()
}

type Limiter struct {
	store   Store
	limits  map[models.Class]models.Limit
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

// WithLimit sets the budget for class. A disabled limit lets every request
// of that class through.
func WithLimit(class models.Class, limit models.Limit) Option {
	return func(l *Limiter) { l.limits[class] = limit }
}

func New(store Store, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	l := &Limiter{
		store:  store,
		limits: make(map[models.Class]models.Limit),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check consumes one request for ip in class. Store failures let the
// request through and are logged; a nil result means no limit applied.
func (l *Limiter) Check(ctx context.Context, class models.Class, ip string) *models.Result {
	limit, ok := l.limits[class]
	if !ok || !limit.Enabled() {
		return nil
	}

	res, err := l.store.Take(ctx, models.Key(class, ip), limit, requestcontext.Now(ctx))
	if err != nil {
		l.metrics.record(class, "error")
		l.logger.WarnContext(ctx, "rate limit store unavailable, allowing request",
			"class", class,
			"ip_prefix", privacy.AnonymizeIP(ip),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}

	if !res.Allowed {
		l.metrics.record(class, "rejected")
		l.logger.InfoContext(ctx, "rate limit exceeded",
			"log_type", "audit",
			"event", "rate_limit.exceeded",
			"class", class,
			"ip_prefix", privacy.AnonymizeIP(ip),
			"request_id", requestcontext.RequestID(ctx),
		)
		return &res
	}
	l.metrics.record(class, "allowed")
	return &res
}
