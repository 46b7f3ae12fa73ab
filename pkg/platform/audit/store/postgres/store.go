package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"

	"peegflow/pkg/platform/audit"
	txcontext "peegflow/pkg/platform/tx"
)

// Store appends audit events to the audit_events table. Inside a unit of
// work the insert joins the open transaction, so an event is only kept
// when the change it describes commits.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, action, tenant_id, actor_id, subject, reason, request_id, client_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		e.Timestamp,
		string(e.Action),
		nullable(e.TenantID),
		nullable(e.ActorID),
		e.Subject,
		e.Reason,
		e.RequestID,
		e.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByTenant returns the most recent events of a tenant, newest first.
func (s *Store) ListByTenant(ctx context.Context, tenantID string, limit int) ([]audit.Event, error) {
	if limit <= 0 || limit > math.MaxInt32 {
		limit = 100
	}
	query := `
		SELECT occurred_at, action, COALESCE(tenant_id::text, ''), COALESCE(actor_id, ''), subject, reason, request_id, client_ip
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(&e.Timestamp, &action, &e.TenantID, &e.ActorID, &e.Subject, &e.Reason, &e.RequestID, &e.ClientIP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
