package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/requestcontext"
)

// Service is the appointment surface exposed to tenant principals.
type Service interface {
	GenerateSlots(ctx context.Context, p *id.Principal, plan models.SlotPlan) (int, error)
	Book(ctx context.Context, p *id.Principal, apptID id.AppointmentID) (*models.View, error)
	Cancel(ctx context.Context, p *id.Principal, apptID id.AppointmentID) (*models.View, error)
	SetStatus(ctx context.Context, p *id.Principal, apptID id.AppointmentID, to models.Status) (*models.View, error)
	ListRange(ctx context.Context, p *id.Principal, w id.Window) ([]*models.View, error)
	ListAvailable(ctx context.Context, p *id.Principal) ([]*models.View, error)
	ListMine(ctx context.Context, p *id.Principal) ([]*models.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the appointment routes. The caller wraps r with the
// tenant auth middleware; role checks are applied per route.
func (h *Handler) Register(r chi.Router) {
	admin := authmw.RequireRole(h.logger, id.RoleAdmin)
	patient := authmw.RequireRole(h.logger, id.RolePatient)

	r.Get("/appointments/range", h.HandleRange)
	r.Get("/appointments/available", h.HandleAvailable)
	r.Post("/appointments/cancel", h.HandleCancel)
	r.With(patient).Get("/appointments/mine", h.HandleMine)
	r.With(patient).Post("/appointments/book", h.HandleBook)
	r.With(admin).Post("/appointments/set-status", h.HandleSetStatus)
	r.With(admin).Post("/appointments/bulk", h.HandleBulk)
}

// HandleRange lists appointments between date_from and date_to inclusive.
func (h *Handler) HandleRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}

	window, err := rangeWindow(r.URL.Query().Get("date_from"), r.URL.Query().Get("date_to"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	views, err := h.service.ListRange(ctx, p, window)
	if err != nil {
		h.logger.ErrorContext(ctx, "list appointments failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAppointmentResponses(views))
}

func rangeWindow(from, to string) (id.Window, error) {
	if from == "" || to == "" {
		return id.Window{}, dErrors.New(dErrors.CodeValidation, "date_from and date_to are required (YYYY-MM-DD)")
	}
	d1, err := id.ParseDate(from)
	if err != nil {
		return id.Window{}, err
	}
	d2, err := id.ParseDate(to)
	if err != nil {
		return id.Window{}, err
	}
	return id.DaysWindow(d1, d2)
}

func (h *Handler) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list available appointments failed", h.service.ListAvailable)
}

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list own appointments failed", h.service.ListMine)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, msg string, fn func(context.Context, *id.Principal) ([]*models.View, error)) {
	ctx := r.Context()
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	views, err := fn(ctx, p)
	if err != nil {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAppointmentResponses(views))
}

func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AppointmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Book(ctx, p, req.appointmentID())
	if err != nil {
		h.logger.WarnContext(ctx, "book appointment failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAppointmentResponse(view))
}

func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AppointmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Cancel(ctx, p, req.appointmentID())
	if err != nil {
		h.logger.WarnContext(ctx, "cancel appointment failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAppointmentResponse(view))
}

// HandleSetStatus marks a slot done, no_show or canceled.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.SetStatus(ctx, p, req.appointmentID(), models.Status(req.Status))
	if err != nil {
		h.logger.WarnContext(ctx, "set appointment status failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAppointmentResponse(view))
}

func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	plan, err := req.plan()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.GenerateSlots(ctx, p, plan)
	if err != nil {
		h.logger.ErrorContext(ctx, "generate slots failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BulkResponse{Created: created})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (*id.Principal, bool) {
	ctx := r.Context()
	p, err := httputil.RequirePrincipal(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return p, true
}
