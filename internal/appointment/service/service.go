package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/platform/tracer"
	"peegflow/pkg/requestcontext"
)

// Service runs the appointment state machine for one tenant per call. The
// tenant always comes from the principal, never from the request body.
type Service struct {
	store     Store
	directory PatientDirectory
	logger    *slog.Logger
	audit     *audit.Logger
	metrics   *Metrics
	tracer    tracer.Tracer
	newID     func() id.AppointmentID
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("appointment store is required")
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
		store:     store,
		directory: cfg.directory,
		logger:    logger,
		audit:     cfg.auditLogger,
		metrics:   cfg.metrics,
		tracer:    t,
		newID:     func() id.AppointmentID { return id.AppointmentID(uuid.New()) },
	}, nil
}

// GenerateSlots inserts the plan's available slots, skipping any whose
// exact start and end already exist, and returns how many were created.
func (s *Service) GenerateSlots(ctx context.Context, p *id.Principal, plan models.SlotPlan) (created int, err error) {
	if err := requireAdmin(p); err != nil {
		return 0, err
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanAppointmentGenerate, tracer.String(tracer.AttrTenantID, p.TenantID.String()))
	defer func() { span.End(err) }()

	slots, err := plan.Slots(p.TenantID, requestcontext.Now(ctx), s.newID)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(tracer.Int(tracer.AttrSlotsPlanned, len(slots)))
	if len(slots) == 0 {
		return 0, nil
	}

	created, err = s.store.CreateIfAbsent(ctx, slots)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create slots")
	}
	span.SetAttributes(tracer.Int(tracer.AttrSlotsCreated, created))
	s.metrics.AddSlotsGenerated(created)
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionSlotsGenerated,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  plan.Day.Format(id.DateLayout),
	})
	return created, nil
}

// Book claims an available future slot for the calling patient. The loser
// of a race for the same slot gets a conflict.
func (s *Service) Book(ctx context.Context, p *id.Principal, apptID id.AppointmentID) (appt *models.View, err error) {
	if err := requireRole(p, id.RolePatient); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanAppointmentBook,
		tracer.String(tracer.AttrTenantID, p.TenantID.String()),
		tracer.String(tracer.AttrAppointmentID, apptID.String()),
	)
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)
	current, err := s.find(ctx, p.TenantID, apptID)
	if err != nil {
		return nil, err
	}
	if err := current.CanBook(now); err != nil {
		s.bookingConflict(ctx, span, p, apptID, current.Status)
		return nil, err
	}

	booked, err := s.store.Claim(ctx, p.TenantID, apptID, p.UserID, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			s.bookingConflict(ctx, span, p, apptID, current.Status)
			return nil, models.ErrSlotUnavailable
		}
		return nil, translate(err, "failed to book appointment")
	}

	s.metrics.IncrementBooking(OutcomeBooked)
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionAppointmentBooked,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  apptID.String(),
	})
	return &models.View{Appointment: booked}, nil
}

func (s *Service) bookingConflict(ctx context.Context, span tracer.Span, p *id.Principal, apptID id.AppointmentID, seen models.Status) {
	span.AddEvent(tracer.EventConflict, tracer.String(tracer.AttrStatusFrom, string(seen)))
	s.metrics.IncrementBooking(OutcomeConflict)
	s.logger.InfoContext(ctx, "booking rejected",
		"tenant_id", p.TenantID,
		"appointment_id", apptID,
		"status", seen,
		"request_id", requestcontext.RequestID(ctx),
	)
}

// Cancel moves a slot to canceled. Patients may cancel only their own
// booked slot; admins may cancel any non-terminal slot.
func (s *Service) Cancel(ctx context.Context, p *id.Principal, apptID id.AppointmentID) (appt *models.View, err error) {
	if err := requireRole(p, id.RoleAdmin, id.RolePatient); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanAppointmentCancel,
		tracer.String(tracer.AttrTenantID, p.TenantID.String()),
		tracer.String(tracer.AttrAppointmentID, apptID.String()),
		tracer.String(tracer.AttrActorRole, p.Role.String()),
	)
	defer func() { span.End(err) }()

	current, err := s.find(ctx, p.TenantID, apptID)
	if err != nil {
		return nil, err
	}
	if err := current.CanCancel(p.Role, p.UserID); err != nil {
		return nil, err
	}
	from := models.Sources(models.StatusCanceled)
	if p.Role == id.RolePatient {
		from = []models.Status{models.StatusBooked}
	}

	canceled, err := s.transition(ctx, p, current, from, models.StatusCanceled)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionAppointmentCanceled,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  apptID.String(),
		Reason:   string(current.Status),
	})
	return s.withContact(ctx, p, canceled), nil
}

// SetStatus is the admin's done, no_show or canceled marking.
func (s *Service) SetStatus(ctx context.Context, p *id.Principal, apptID id.AppointmentID, to models.Status) (appt *models.View, err error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanAppointmentSetStatus,
		tracer.String(tracer.AttrTenantID, p.TenantID.String()),
		tracer.String(tracer.AttrAppointmentID, apptID.String()),
		tracer.String(tracer.AttrStatusTo, string(to)),
	)
	defer func() { span.End(err) }()

	current, err := s.find(ctx, p.TenantID, apptID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrStatusFrom, string(current.Status)))
	if err := current.CanSetStatus(to); err != nil {
		return nil, err
	}

	updated, err := s.transition(ctx, p, current, models.Sources(to), to)
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionAppointmentStatusSet,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  apptID.String(),
		Reason:   string(current.Status) + "->" + string(to),
	})
	return s.withContact(ctx, p, updated), nil
}

// transition applies the conditional write. A status that changed between
// the read and the write surfaces as a conflict.
func (s *Service) transition(ctx context.Context, p *id.Principal, current *models.Appointment, from []models.Status, to models.Status) (*models.Appointment, error) {
	updated, err := s.store.Transition(ctx, p.TenantID, current.ID, from, to, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeConflict, "appointment status changed, reload and retry")
		}
		return nil, translate(err, "failed to update appointment")
	}
	s.metrics.IncrementTransition(to)
	return updated, nil
}

func (s *Service) find(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID) (*models.Appointment, error) {
	appt, err := s.store.FindByID(ctx, tenantID, apptID)
	if err != nil {
		return nil, translate(err, "failed to load appointment")
	}
	return appt, nil
}

func requireAdmin(p *id.Principal) error {
	return requireRole(p, id.RoleAdmin)
}

func requireRole(p *id.Principal, roles ...id.Role) error {
	if p == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeForbidden, "Access denied")
}

func translate(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
