package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"peegflow/internal/patient/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/pgerr"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
)

// PostgresStore persists patients. Optional text columns store NULL for
// empty values.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const patientColumns = `id, tenant_id, user_id, full_name, phone, email, birth_date, sex, marital_status,
	address, occupation, emergency_name, emergency_phone, document_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Patient) error {
	if p == nil {
		return fmt.Errorf("patient is required")
	}
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	args := append([]any{uuid.UUID(p.ID), uuid.UUID(p.TenantID), nullUser(p.UserID)}, profileArgs(p.Profile)...)
	args = append(args, p.CreatedAt, p.UpdatedAt)
	if _, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return fmt.Errorf("patient %s: %w", p.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE tenant_id = $1 AND id = $2`
	p, err := scanPatient(txcontext.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(tenantID), uuid.UUID(patientID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID) ([]*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE tenant_id = $1 ORDER BY lower(full_name), created_at`
	return s.list(ctx, "list patients", query, uuid.UUID(tenantID))
}

func (s *PostgresStore) FindByUserIDs(ctx context.Context, tenantID id.TenantID, userIDs []id.UserID) ([]*models.Patient, error) {
	if len(userIDs) == 0 {
		return []*models.Patient{}, nil
	}
	args := []any{uuid.UUID(tenantID)}
	placeholders := make([]string, 0, len(userIDs))
	for _, u := range userIDs {
		args = append(args, uuid.UUID(u))
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}
	query := `SELECT ` + patientColumns + ` FROM patients WHERE tenant_id = $1 AND user_id IN (` + strings.Join(placeholders, ", ") + `)`
	return s.list(ctx, "find patients by user", query, args...)
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Patient) error {
	if p == nil {
		return fmt.Errorf("patient is required")
	}
	query := `
		UPDATE patients
		SET user_id = $3, full_name = $4, phone = $5, email = $6, birth_date = $7, sex = $8,
			marital_status = $9, address = $10, occupation = $11, emergency_name = $12,
			emergency_phone = $13, document_id = $14, updated_at = $15
		WHERE tenant_id = $1 AND id = $2
	`
	args := append([]any{uuid.UUID(p.TenantID), uuid.UUID(p.ID), nullUser(p.UserID)}, profileArgs(p.Profile)...)
	args = append(args, p.UpdatedAt)
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	return requireRow(res, "update patient")
}

func (s *PostgresStore) Delete(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM patients WHERE tenant_id = $1 AND id = $2`, uuid.UUID(tenantID), uuid.UUID(patientID))
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return requireRow(res, "delete patient")
}

func requireRow(res sql.Result, action string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", action, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) list(ctx context.Context, action, query string, args ...any) ([]*models.Patient, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer rows.Close()

	out := make([]*models.Patient, 0)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return out, nil
}

func profileArgs(p models.Profile) []any {
	return []any{
		p.FullName,
		nullString(p.Phone),
		nullString(p.Email),
		p.BirthDate,
		nullString(p.Sex),
		nullString(p.MaritalStatus),
		nullString(p.Address),
		nullString(p.Occupation),
		nullString(p.EmergencyName),
		nullString(p.EmergencyPhone),
		nullString(p.DocumentID),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUser(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

type patientRow interface {
	Scan(dest ...any) error
}

func scanPatient(row patientRow) (*models.Patient, error) {
	var (
		p         models.Patient
		patientID uuid.UUID
		tenantID  uuid.UUID
		userID    uuid.NullUUID
		birth     sql.NullTime
		phone, email, sex, marital, address, occupation,
		emergencyName, emergencyPhone, documentID sql.NullString
	)
	if err := row.Scan(&patientID, &tenantID, &userID, &p.FullName, &phone, &email, &birth, &sex, &marital,
		&address, &occupation, &emergencyName, &emergencyPhone, &documentID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PatientID(patientID)
	p.TenantID = id.TenantID(tenantID)
	if userID.Valid {
		u := id.UserID(userID.UUID)
		p.UserID = &u
	}
	if birth.Valid {
		b := birth.Time.UTC()
		p.BirthDate = &b
	}
	p.Phone = phone.String
	p.Email = email.String
	p.Sex = sex.String
	p.MaritalStatus = marital.String
	p.Address = address.String
	p.Occupation = occupation.String
	p.EmergencyName = emergencyName.String
	p.EmergencyPhone = emergencyPhone.String
	p.DocumentID = documentID.String
	return &p, nil
}
