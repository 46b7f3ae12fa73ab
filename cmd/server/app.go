package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apptservice "peegflow/internal/appointment/service"
	apptstore "peegflow/internal/appointment/store/appointment"
	"peegflow/internal/auth/lockout"
	authmetrics "peegflow/internal/auth/metrics"
	authservice "peegflow/internal/auth/service"
	lockoutstore "peegflow/internal/auth/store/lockout"
	"peegflow/internal/auth/store/platformadmin"
	userstore "peegflow/internal/auth/store/user"
	"peegflow/internal/auth/workers/cleanup"
	"peegflow/internal/credential"
	financeservice "peegflow/internal/finance/service"
	expensestore "peegflow/internal/finance/store/expense"
	patientservice "peegflow/internal/patient/service"
	patientstore "peegflow/internal/patient/store/patient"
	"peegflow/internal/platform/config"
	"peegflow/internal/platform/database"
	redisclient "peegflow/internal/platform/redis"
	ratelimitmodels "peegflow/internal/ratelimit/models"
	ratelimitservice "peegflow/internal/ratelimit/service"
	"peegflow/internal/ratelimit/store/bucket"
	"peegflow/internal/seeder"
	noteservice "peegflow/internal/sessionnote/service"
	notestore "peegflow/internal/sessionnote/store/note"
	tenantservice "peegflow/internal/tenant/service"
	tenantstore "peegflow/internal/tenant/store/tenant"
	"peegflow/pkg/platform/audit"
	auditpostgres "peegflow/pkg/platform/audit/store/postgres"
	"peegflow/pkg/platform/circuit"
	"peegflow/pkg/platform/tracer"
	txcontext "peegflow/pkg/platform/tx"
	"peegflow/pkg/secrets"
)

// stores is one persistence backend. Memory and Postgres variants share
// the same shape so the services never know which one they got.
type stores struct {
	users        authservice.UserStore
	admins       authservice.PlatformAdminStore
	tenants      tenantservice.TenantStore
	patients     patientservice.Store
	appointments apptservice.Store
	notes        noteservice.Store
	expenses     financeservice.ExpenseStore
	audit        audit.Store
	tx           txcontext.Runner
}

func memoryStores() *stores {
	return &stores{
		users:        userstore.New(),
		admins:       platformadmin.NewInMemory(),
		tenants:      tenantstore.NewInMemory(),
		patients:     patientstore.NewInMemory(),
		appointments: apptstore.NewInMemory(),
		notes:        notestore.NewInMemory(),
		expenses:     expensestore.NewInMemory(),
		audit:        audit.NewMemoryStore(),
		tx:           txcontext.NewMemoryRunner(),
	}
}

func postgresStores(db *sql.DB) *stores {
	return &stores{
		users:        userstore.NewPostgres(db),
		admins:       platformadmin.NewPostgres(db),
		tenants:      tenantstore.NewPostgres(db),
		patients:     patientstore.NewPostgres(db),
		appointments: apptstore.NewPostgres(db),
		notes:        notestore.NewPostgres(db),
		expenses:     expensestore.NewPostgres(db),
		audit:        auditpostgres.New(db),
		tx:           txcontext.NewPostgresRunner(db),
	}
}

// services holds every domain service built on one stores value.
type services struct {
	auth         *authservice.Service
	tenants      *tenantservice.TenantService
	patients     *patientservice.Service
	appointments *apptservice.Service
	notes        *noteservice.Service
	finance      *financeservice.Service
}

// loginGuard builds the lockout guard. With Redis the state is shared
// across instances and the in-process store only serves while the breaker
// is open; without Redis the in-process store is the primary.
func loginGuard(cfg config.Auth, rdb *redisclient.Client, local *lockoutstore.InMemory, logger *slog.Logger) *lockout.Guard {
	opts := []lockout.Option{
		lockout.WithConfig(lockout.Config{
			MaxFailures:  cfg.LoginMaxFailures,
			Window:       cfg.LoginLockWindow,
			LockDuration: cfg.LoginLockFor,
		}),
		lockout.WithLogger(logger),
	}
	if rdb == nil {
		return lockout.New(local, opts...)
	}
	opts = append(opts,
		lockout.WithFallback(local),
		lockout.WithBreaker(circuit.New("login-lockout")),
	)
	return lockout.New(lockoutstore.NewRedis(rdb.Client), opts...)
}

// authLimiter throttles the public auth routes per client IP. Buckets live
// in Redis when configured so every replica shares one budget.
func authLimiter(cfg config.Auth, rdb *redisclient.Client, local *bucket.InMemory, reg prometheus.Registerer, logger *slog.Logger) (*ratelimitservice.Limiter, error) {
	var store ratelimitservice.Store = local
	if rdb != nil {
		store = bucket.NewRedis(rdb.Client)
	}
	return ratelimitservice.New(store,
		ratelimitservice.WithLimit(ratelimitmodels.ClassAuth, ratelimitmodels.Limit{
			Requests: cfg.AuthRateLimit,
			Window:   cfg.AuthRateWindow,
		}),
		ratelimitservice.WithMetrics(ratelimitservice.NewMetrics(reg)),
		ratelimitservice.WithLogger(logger),
	)
}

func buildServices(cfg *config.Config, st *stores, guard *lockout.Guard, reg prometheus.Registerer, logger *slog.Logger) (*services, error) {
	auditLogger := audit.NewLogger(logger, st.audit)
	trace := tracer.NewOTel()

	codec, err := credential.NewCodec(credential.Config{
		TenantSecret:   []byte(cfg.Auth.TenantSecret),
		PlatformSecret: []byte(cfg.Auth.PlatformSecret),
		TTL:            cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, err
	}

	auth, err := authservice.New(st.users, st.admins, st.tenants, codec, secrets.NewHasher(secrets.DefaultParams()),
		authservice.WithLogger(logger),
		authservice.WithAuditLogger(auditLogger),
		authservice.WithMetrics(authmetrics.New(reg)),
		authservice.WithLoginGuard(guard),
		authservice.WithTxRunner(st.tx),
	)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}

	tenants := tenantservice.NewTenantService(st.tenants,
		tenantservice.WithLogger(logger),
		tenantservice.WithAuditLogger(auditLogger),
		tenantservice.WithMetrics(tenantservice.NewMetrics(reg)),
		tenantservice.WithTxRunner(st.tx),
		tenantservice.WithAdminProvisioner(auth),
	)

	patients, err := patientservice.New(st.patients, auth,
		patientservice.WithLogger(logger),
		patientservice.WithAuditLogger(auditLogger),
		patientservice.WithTxRunner(st.tx),
	)
	if err != nil {
		return nil, fmt.Errorf("patient service: %w", err)
	}

	appointments, err := apptservice.New(st.appointments,
		apptservice.WithLogger(logger),
		apptservice.WithAuditLogger(auditLogger),
		apptservice.WithMetrics(apptservice.NewMetrics(reg)),
		apptservice.WithTracer(trace),
		apptservice.WithPatientDirectory(patients),
	)
	if err != nil {
		return nil, fmt.Errorf("appointment service: %w", err)
	}

	notes, err := noteservice.New(st.notes, patients,
		noteservice.WithLogger(logger),
		noteservice.WithAuditLogger(auditLogger),
	)
	if err != nil {
		return nil, fmt.Errorf("session note service: %w", err)
	}

	finance, err := financeservice.New(st.expenses, st.appointments,
		financeservice.WithLogger(logger),
		financeservice.WithAuditLogger(auditLogger),
		financeservice.WithTracer(trace),
	)
	if err != nil {
		return nil, fmt.Errorf("finance service: %w", err)
	}

	return &services{
		auth:         auth,
		tenants:      tenants,
		patients:     patients,
		appointments: appointments,
		notes:        notes,
		finance:      finance,
	}, nil
}

// app is the assembled server: router inputs plus the resources main owns.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	stores   *stores
	services *services
	pool     *database.Pool
	redis    *redisclient.Client
	cleanup  *cleanup.CleanupService
	limiter  *ratelimitservice.Limiter
}

// newApp connects to the configured backends, migrates, wires the services
// and runs the seeder. An empty DATABASE_URL selects in-memory stores.
func newApp(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	pool, err := database.New(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, err
	}
	if pool != nil {
		a.pool = pool
		if err := pool.Migrate(ctx); err != nil {
			a.close()
			return nil, err
		}
		if err := pool.RegisterMetrics(reg); err != nil {
			logger.WarnContext(ctx, "database metrics not registered", "error", err)
		}
		a.stores = postgresStores(pool.DB())
		logger.InfoContext(ctx, "using postgres stores")
	} else {
		a.stores = memoryStores()
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	rdb, err := redisclient.New(ctx, cfg.Redis, reg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.redis = rdb

	local := lockoutstore.NewInMemory()
	buckets := bucket.NewInMemory()
	a.cleanup, err = cleanup.New(
		cleanup.WithStore("login_lockout", local),
		cleanup.WithStore("rate_limit", buckets),
		cleanup.WithCleanupLogger(logger),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	a.limiter, err = authLimiter(cfg.Auth, rdb, buckets, reg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	a.services, err = buildServices(cfg, a.stores, loginGuard(cfg.Auth, rdb, local, logger), reg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.Bootstrap.Enabled {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		_, err := seeder.New(a.services.auth, a.stores.tenants, logger).Seed(seedCtx, seeder.Config{
			PlatformAdminName:     cfg.Bootstrap.PlatformAdminName,
			PlatformAdminEmail:    cfg.Bootstrap.PlatformAdminEmail,
			PlatformAdminPassword: cfg.Bootstrap.PlatformAdminPassword,
			TenantName:            cfg.Bootstrap.DefaultTenantName,
			TenantSlug:            cfg.Bootstrap.DefaultTenantSlug,
			AdminEmail:            cfg.Bootstrap.DefaultAdminEmail,
			AdminPassword:         cfg.Bootstrap.DefaultAdminPassword,
		})
		if err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Error("close redis", "error", err)
	}
	if err := a.pool.Close(); err != nil {
		a.logger.Error("close database", "error", err)
	}
}
