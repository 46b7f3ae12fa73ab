package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"peegflow/internal/finance/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/pgerr"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const expenseColumns = `id, tenant_id, title, amount_cents, spent_at, notes, created_at`

func (s *PostgresStore) Create(ctx context.Context, e *models.Expense) error {
	if e == nil {
		return fmt.Errorf("expense is required")
	}
	query := `INSERT INTO expenses (` + expenseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	notes := sql.NullString{String: e.Notes, Valid: e.Notes != ""}
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(e.ID), uuid.UUID(e.TenantID), e.Title, e.AmountCents, e.SpentAt, notes, e.CreatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("expense %s: %w", e.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRange(ctx context.Context, tenantID id.TenantID, w id.Window) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE tenant_id = $1 AND spent_at BETWEEN $2 AND $3 ORDER BY spent_at DESC, created_at DESC`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(tenantID), w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Expense, 0)
	for rows.Next() {
		var (
			expenseID, tenant uuid.UUID
			notes             sql.NullString
			e                 models.Expense
		)
		if err := rows.Scan(&expenseID, &tenant, &e.Title, &e.AmountCents, &e.SpentAt, &notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ID = id.ExpenseID(expenseID)
		e.TenantID = id.TenantID(tenant)
		e.Notes = notes.String
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, tenantID id.TenantID, expenseID id.ExpenseID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM expenses WHERE tenant_id = $1 AND id = $2`, uuid.UUID(tenantID), uuid.UUID(expenseID))
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
