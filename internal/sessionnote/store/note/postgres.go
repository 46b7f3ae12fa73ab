package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"peegflow/internal/sessionnote/models"
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

const noteColumns = `id, tenant_id, patient_id, appointment_id, content, is_locked, session_date, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, n *models.Note) error {
	if n == nil {
		return fmt.Errorf("session note is required")
	}
	query := `
		INSERT INTO session_notes (` + noteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(n.ID), uuid.UUID(n.TenantID), uuid.UUID(n.PatientID), nullAppointment(n.AppointmentID),
		n.Content, n.IsLocked, n.SessionDate, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		switch {
		case pgerr.IsUniqueViolation(err):
			return fmt.Errorf("session note %s: %w", n.ID, sentinel.ErrAlreadyUsed)
		case pgerr.IsForeignKeyViolation(err):
			return fmt.Errorf("session note references: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("create session note: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, noteID id.SessionNoteID) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM session_notes WHERE tenant_id = $1 AND id = $2`
	n, err := scanNote(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(noteID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find session note: %w", err)
	}
	return n, nil
}

// UpdateUnlocked writes only when the stored row is still unlocked, so a
// concurrent lock wins over a late edit.
func (s *PostgresStore) UpdateUnlocked(ctx context.Context, n *models.Note) error {
	query := `
		UPDATE session_notes
		SET content = $3, is_locked = $4, session_date = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2 AND is_locked = false
	`
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(n.TenantID), uuid.UUID(n.ID), n.Content, n.IsLocked, n.SessionDate, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update session note: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session note: %w", err)
	}
	if rows > 0 {
		return nil
	}
	if _, err := s.FindByID(ctx, n.TenantID, n.ID); err != nil {
		return err
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) ListByPatient(ctx context.Context, tenantID id.TenantID, patientID id.PatientID, w *id.Window) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM session_notes WHERE tenant_id = $1 AND patient_id = $2`
	args := []any{uuid.UUID(tenantID), uuid.UUID(patientID)}
	if w != nil {
		query += ` AND session_date BETWEEN $3 AND $4`
		args = append(args, w.From, w.To)
	}
	query += ` ORDER BY session_date DESC, created_at DESC`

	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list session notes: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list session notes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*models.Note, error) {
	var (
		noteID, tenantID, patientID uuid.UUID
		appointmentID               uuid.NullUUID
		n                           models.Note
	)
	if err := row.Scan(&noteID, &tenantID, &patientID, &appointmentID, &n.Content, &n.IsLocked,
		&n.SessionDate, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.ID = id.SessionNoteID(noteID)
	n.TenantID = id.TenantID(tenantID)
	n.PatientID = id.PatientID(patientID)
	if appointmentID.Valid {
		apptID := id.AppointmentID(appointmentID.UUID)
		n.AppointmentID = &apptID
	}
	return &n, nil
}

func nullAppointment(apptID *id.AppointmentID) uuid.NullUUID {
	if apptID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*apptID), Valid: true}
}
