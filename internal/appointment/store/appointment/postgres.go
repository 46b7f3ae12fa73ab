package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
)

// PostgresStore persists appointments. State changes are single
// conditional UPDATE statements, so a concurrent writer that changed the
// status first leaves the loser with zero affected rows.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const appointmentColumns = `id, tenant_id, start_at, end_at, status, price_cents, patient_user_id, created_at, updated_at`

// CreateIfAbsent relies on the unique index on (tenant_id, start_at, end_at).
func (s *PostgresStore) CreateIfAbsent(ctx context.Context, slots []*models.Appointment) (int, error) {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $8)
		ON CONFLICT (tenant_id, start_at, end_at) DO NOTHING
	`
	conn := txcontext.Conn(ctx, s.db)
	created := 0
	for _, a := range slots {
		if a == nil {
			return created, fmt.Errorf("appointment is required")
		}
		res, err := conn.ExecContext(ctx, query,
			uuid.UUID(a.ID),
			uuid.UUID(a.TenantID),
			a.StartAt,
			a.EndAt,
			string(a.Status),
			a.PriceCents,
			a.CreatedAt,
			a.UpdatedAt,
		)
		if err != nil {
			return created, fmt.Errorf("insert appointment: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return created, fmt.Errorf("insert appointment rows: %w", err)
		}
		created += int(n)
	}
	return created, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE tenant_id = $1 AND id = $2`
	a, err := scanAppointment(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(apptID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return a, nil
}

// Claim books the slot only while it is still available and in the future.
func (s *PostgresStore) Claim(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID, patient id.UserID, now time.Time) (*models.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'booked', patient_user_id = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2 AND status = 'available' AND start_at > $4
		RETURNING ` + appointmentColumns
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(apptID), uuid.UUID(patient), now)
	return s.conditional(ctx, tenantID, apptID, row, "claim appointment")
}

// Transition moves the slot to `to` only while its status is one of from.
func (s *PostgresStore) Transition(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID, from []models.Status, to models.Status, now time.Time) (*models.Appointment, error) {
	if len(from) == 0 {
		return nil, sentinel.ErrInvalidState
	}
	args := []any{uuid.UUID(tenantID), uuid.UUID(apptID), string(to), now}
	placeholders := make([]string, 0, len(from))
	for _, st := range from {
		args = append(args, string(st))
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}
	query := `
		UPDATE appointments
		SET status = $3, updated_at = $4
		WHERE tenant_id = $1 AND id = $2 AND status IN (` + strings.Join(placeholders, ", ") + `)
		RETURNING ` + appointmentColumns
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, args...)
	return s.conditional(ctx, tenantID, apptID, row, "transition appointment")
}

// conditional distinguishes a missing row from a lost race after an
// UPDATE ... RETURNING matched nothing.
func (s *PostgresStore) conditional(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID, row *sql.Row, action string) (*models.Appointment, error) {
	a, err := scanAppointment(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	if _, err := s.FindByID(ctx, tenantID, apptID); err != nil {
		return nil, err
	}
	return nil, sentinel.ErrInvalidState
}

func (s *PostgresStore) ListRange(ctx context.Context, tenantID id.TenantID, w id.Window, patient *id.UserID) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE tenant_id = $1 AND start_at >= $2 AND start_at <= $3`
	args := []any{uuid.UUID(tenantID), w.From, w.To}
	if patient != nil {
		query += ` AND patient_user_id = $4`
		args = append(args, uuid.UUID(*patient))
	}
	query += ` ORDER BY start_at ASC`
	return s.list(ctx, "list appointments", query, args...)
}

func (s *PostgresStore) ListAvailable(ctx context.Context, tenantID id.TenantID, after time.Time) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE tenant_id = $1 AND status = 'available' AND start_at > $2
		ORDER BY start_at ASC`
	return s.list(ctx, "list available appointments", query, uuid.UUID(tenantID), after)
}

func (s *PostgresStore) ListByPatient(ctx context.Context, tenantID id.TenantID, patient id.UserID) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE tenant_id = $1 AND patient_user_id = $2
		ORDER BY start_at DESC`
	return s.list(ctx, "list patient appointments", query, uuid.UUID(tenantID), uuid.UUID(patient))
}

func (s *PostgresStore) list(ctx context.Context, action, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer rows.Close()

	out := make([]*models.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return out, nil
}

type appointmentRow interface {
	Scan(dest ...any) error
}

func scanAppointment(row appointmentRow) (*models.Appointment, error) {
	var (
		a        models.Appointment
		apptID   uuid.UUID
		tenantID uuid.UUID
		status   string
		patient  uuid.NullUUID
	)
	if err := row.Scan(&apptID, &tenantID, &a.StartAt, &a.EndAt, &status, &a.PriceCents, &patient, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ID = id.AppointmentID(apptID)
	a.TenantID = id.TenantID(tenantID)
	a.Status = models.Status(status)
	a.StartAt = a.StartAt.UTC()
	a.EndAt = a.EndAt.UTC()
	if patient.Valid {
		userID := id.UserID(patient.UUID)
		a.PatientUserID = &userID
	}
	return &a, nil
}
