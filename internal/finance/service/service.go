package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apptmodels "peegflow/internal/appointment/models"
	"peegflow/internal/finance/export"
	"peegflow/internal/finance/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/platform/tracer"
	"peegflow/pkg/requestcontext"
)

var errNotFound = dErrors.New(dErrors.CodeNotFound, "expense not found")

// Service reports a practice's income and manages its expenses. Every
// operation is admin only.
type Service struct {
	expenses     ExpenseStore
	appointments Appointments
	logger       *slog.Logger
	audit        *audit.Logger
	tracer       tracer.Tracer
}

type CreateExpenseCommand struct {
	Title       string
	AmountCents int64
	SpentAt     time.Time
	Notes       string
}

// Report is a generated spreadsheet.
type Report struct {
	Filename string
	Body     []byte
}

func New(expenses ExpenseStore, appointments Appointments, opts ...Option) (*Service, error) {
	if expenses == nil {
		return nil, errors.New("expense store is required")
	}
	if appointments == nil {
		return nil, errors.New("appointment reader is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	t := cfg.tracer
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Service{
		expenses:     expenses,
		appointments: appointments,
		logger:       logger,
		audit:        cfg.auditLogger,
		tracer:       t,
	}, nil
}

// Summary loads appointments and expenses for the period concurrently and
// folds them into income, expense and cash totals.
func (s *Service) Summary(ctx context.Context, p *id.Principal, q models.PeriodQuery) (summary *models.Summary, err error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	period, err := q.Resolve(requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanFinanceSummary,
		tracer.String(tracer.AttrTenantID, p.TenantID.String()),
		tracer.String(tracer.AttrPeriod, period.Label),
	)
	defer func() { span.End(err) }()

	appts, expenses, err := s.load(ctx, p.TenantID, period.Window)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		tracer.Int(tracer.AttrAppointments, len(appts)),
		tracer.Int(tracer.AttrExpenses, len(expenses)),
	)
	return models.Summarize(period, appts, expenses), nil
}

func (s *Service) load(ctx context.Context, tenantID id.TenantID, w id.Window) ([]*apptmodels.Appointment, []*models.Expense, error) {
	var (
		appts    []*apptmodels.Appointment
		expenses []*models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appts, err = s.appointments.ListRange(gctx, tenantID, w, nil)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListRange(gctx, tenantID, w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load finance data")
	}
	return appts, expenses, nil
}

// ListExpenses returns the expenses of the month containing month.
func (s *Service) ListExpenses(ctx context.Context, p *id.Principal, month time.Time) ([]*models.Expense, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListRange(ctx, p.TenantID, id.MonthWindow(month))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expenses")
	}
	return expenses, nil
}

func (s *Service) CreateExpense(ctx context.Context, p *id.Principal, cmd CreateExpenseCommand) (*models.Expense, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	e, err := models.NewExpense(id.ExpenseID(uuid.New()), p.TenantID, cmd.Title, cmd.AmountCents, cmd.SpentAt, cmd.Notes, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create expense")
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionExpenseCreated,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  e.ID.String(),
	})
	return e, nil
}

func (s *Service) DeleteExpense(ctx context.Context, p *id.Principal, expenseID id.ExpenseID) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, p.TenantID, expenseID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete expense")
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionExpenseDeleted,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  expenseID.String(),
	})
	return nil
}

// ExportMonth renders the month's expenses and summary as XLSX.
func (s *Service) ExportMonth(ctx context.Context, p *id.Principal, month time.Time) (*Report, error) {
	label := month.Format(id.MonthLayout)
	summary, err := s.Summary(ctx, p, models.PeriodQuery{Month: label})
	if err != nil {
		return nil, err
	}
	expenses, err := s.ListExpenses(ctx, p, month)
	if err != nil {
		return nil, err
	}
	body, err := export.Workbook(summary, expenses)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render expense report")
	}
	return &Report{Filename: "financeiro_" + label + ".xlsx", Body: body}, nil
}

func requireAdmin(p *id.Principal) error {
	if p == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	if !p.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "Access denied")
	}
	return nil
}
