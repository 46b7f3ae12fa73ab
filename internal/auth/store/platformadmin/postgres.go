package platformadmin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/pgerr"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
)

// PostgresStore persists platform operators in platform_admins.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const adminColumns = `id, name, email, password_hash, is_active, created_at`

func (s *PostgresStore) Create(ctx context.Context, admin *models.PlatformAdmin) error {
	query := `INSERT INTO platform_admins (` + adminColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(admin.ID),
		admin.Name,
		models.NormalizeEmail(admin.Email),
		admin.PasswordHash,
		admin.IsActive,
		admin.CreatedAt,
	)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("platform admin email: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create platform admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, adminID id.PlatformAdminID) (*models.PlatformAdmin, error) {
	query := `SELECT ` + adminColumns + ` FROM platform_admins WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(adminID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error) {
	query := `SELECT ` + adminColumns + ` FROM platform_admins WHERE email = $1`
	return s.findOne(ctx, query, models.NormalizeEmail(email))
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.PlatformAdmin, error) {
	var (
		a       models.PlatformAdmin
		adminID uuid.UUID
	)
	err := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, arg).
		Scan(&adminID, &a.Name, &a.Email, &a.PasswordHash, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("platform admin not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find platform admin: %w", err)
	}
	a.ID = id.PlatformAdminID(adminID)
	return &a, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, adminID id.PlatformAdminID, hash string) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE platform_admins SET password_hash = $2 WHERE id = $1`, uuid.UUID(adminID), hash)
	if err != nil {
		return fmt.Errorf("update platform admin password: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update platform admin password rows: %w", err)
	} else if n == 0 {
		return fmt.Errorf("platform admin not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
