package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/pgerr"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
)

// PostgresStore persists accounts in the users table. (tenant_id, email)
// carries a unique index.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, tenant_id, name, email, password_hash, role, is_active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(user.ID),
		uuid.UUID(user.TenantID),
		user.Name,
		models.NormalizeEmail(user.Email),
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("user email: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByTenantAndID(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND tenant_id = $2`
	return s.findOne(ctx, "find user by id", query, uuid.UUID(userID), uuid.UUID(tenantID))
}

func (s *PostgresStore) FindByTenantAndEmail(ctx context.Context, tenantID id.TenantID, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND email = $2`
	return s.findOne(ctx, "find user by email", query, uuid.UUID(tenantID), models.NormalizeEmail(email))
}

func (s *PostgresStore) findOne(ctx context.Context, action, query string, args ...any) (*models.User, error) {
	u, err := scanUser(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return u, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, tenantID id.TenantID, userID id.UserID, hash string, now time.Time) error {
	query := `UPDATE users SET password_hash = $3, updated_at = $4 WHERE id = $1 AND tenant_id = $2`
	return s.exec(ctx, "update password", query, uuid.UUID(userID), uuid.UUID(tenantID), hash, now)
}

func (s *PostgresStore) SetActive(ctx context.Context, tenantID id.TenantID, userID id.UserID, active bool, now time.Time) error {
	query := `UPDATE users SET is_active = $3, updated_at = $4 WHERE id = $1 AND tenant_id = $2`
	return s.exec(ctx, "set user active", query, uuid.UUID(userID), uuid.UUID(tenantID), active, now)
}

func (s *PostgresStore) exec(ctx context.Context, action, query string, args ...any) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", action, err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*models.User, error) {
	var (
		u        models.User
		userID   uuid.UUID
		tenantID uuid.UUID
		role     string
	)
	if err := row.Scan(&userID, &tenantID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.TenantID = id.TenantID(tenantID)
	u.Role = id.Role(role)
	return &u, nil
}
