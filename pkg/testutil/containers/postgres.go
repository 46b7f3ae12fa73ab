//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"peegflow/internal/platform/database"
	id "peegflow/pkg/domain"
)

// PostgresContainer is a migrated database shared by every suite in the
// test binary. Ryuk removes the container when the process exits.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

var (
	sharedOnce sync.Once
	shared     *PostgresContainer
	sharedErr  error
)

// Postgres returns the shared container, starting and migrating it on
// first use. Suites must clean up their own rows (see TruncateAll).
func Postgres(t testing.TB) *PostgresContainer {
	t.Helper()
	sharedOnce.Do(func() {
		shared, sharedErr = start(context.Background())
	})
	if sharedErr != nil {
		t.Fatalf("postgres container: %v", sharedErr)
	}
	return shared
}

func start(ctx context.Context) (*PostgresContainer, error) {
	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("peegflow_test"),
		postgres.WithUsername("peegflow"),
		postgres.WithPassword("peegflow_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	pool, err := database.New(ctx, database.DefaultConfig(dsn))
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &PostgresContainer{Container: container, DSN: dsn, DB: pool.DB()}, nil
}

// TruncateTables clears all data from the specified tables.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAll empties every application table. CASCADE follows the
// foreign keys from tenants down to notes and expenses.
func (p *PostgresContainer) TruncateAll(ctx context.Context) error {
	return p.TruncateTables(ctx,
		"audit_events",
		"expenses",
		"session_notes",
		"appointments",
		"patients",
		"users",
		"platform_admins",
		"tenants",
	)
}

func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

// CreateTestTenant inserts an active tenant with a random slug.
func (p *PostgresContainer) CreateTestTenant(ctx context.Context, t testing.TB) id.TenantID {
	t.Helper()
	tenantID := id.TenantID(uuid.New())
	_, err := p.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
	`, uuid.UUID(tenantID), "Test Tenant", "t-"+uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("CreateTestTenant: %v", err)
	}
	return tenantID
}

// CreateTestPatientUser inserts an active patient account for tenantID.
func (p *PostgresContainer) CreateTestPatientUser(ctx context.Context, t testing.TB, tenantID id.TenantID) id.UserID {
	t.Helper()
	userID := id.UserID(uuid.New())
	_, err := p.Exec(ctx, `
		INSERT INTO users (id, tenant_id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, 'Test Patient', $3, 'x', 'patient', TRUE, NOW(), NOW())
	`, uuid.UUID(userID), uuid.UUID(tenantID), "p-"+uuid.NewString()+"@example.com")
	if err != nil {
		t.Fatalf("CreateTestPatientUser: %v", err)
	}
	return userID
}
