package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peegflow/internal/patient/models"
	"peegflow/internal/patient/service"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/httputil"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, p *id.Principal, cmd service.CreateCommand) (*models.Patient, error)
	List(ctx context.Context, p *id.Principal) ([]*models.Patient, error)
	Get(ctx context.Context, p *id.Principal, patientID id.PatientID) (*models.Patient, error)
	Update(ctx context.Context, p *id.Principal, patientID id.PatientID, patch models.Patch) (*models.Patient, error)
	GrantAccess(ctx context.Context, p *id.Principal, patientID id.PatientID, pw string) (*models.Patient, error)
	RevokeAccess(ctx context.Context, p *id.Principal, patientID id.PatientID) error
	Delete(ctx context.Context, p *id.Principal, patientID id.PatientID) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin-only patient routes behind tenant auth.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, id.RoleAdmin))
		r.Get("/patients", h.HandleList)
		r.Post("/patients", h.HandleCreate)
		r.Get("/patients/{id}", h.HandleGet)
		r.Patch("/patients/{id}", h.HandleUpdate)
		r.Delete("/patients/{id}", h.HandleDelete)
		r.Post("/patients/{id}/access", h.HandleGrantAccess)
		r.Delete("/patients/{id}/access", h.HandleRevokeAccess)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreatePatientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	patient, err := h.service.Create(ctx, p, req.command())
	if err != nil {
		h.logger.WarnContext(ctx, "create patient failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPatientResponse(patient))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	patients, err := h.service.List(ctx, p)
	if err != nil {
		h.logger.ErrorContext(ctx, "list patients failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPatientResponses(patients))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, patientID, ok := h.target(w, r)
	if !ok {
		return
	}
	patient, err := h.service.Get(ctx, p, patientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPatientResponse(patient))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, patientID, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdatePatientRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	patient, err := h.service.Update(ctx, p, patientID, req.patch())
	if err != nil {
		h.logger.WarnContext(ctx, "update patient failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPatientResponse(patient))
}

// HandleDelete deactivates the linked login, then removes the record.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, patientID, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, p, patientID); err != nil {
		h.logger.WarnContext(ctx, "delete patient failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGrantAccess creates or reactivates the patient's login. The body
// is optional.
func (h *Handler) HandleGrantAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, patientID, ok := h.target(w, r)
	if !ok {
		return
	}
	req := &AccessRequest{}
	if r.ContentLength != 0 {
		req, ok = httputil.DecodeAndPrepare[AccessRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
	}

	patient, err := h.service.GrantAccess(ctx, p, patientID, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "grant patient access failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPatientResponse(patient))
}

func (h *Handler) HandleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, patientID, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.service.RevokeAccess(ctx, p, patientID); err != nil {
		h.logger.WarnContext(ctx, "revoke patient access failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (*id.Principal, id.PatientID, bool) {
	p, ok := h.principal(w, r)
	if !ok {
		return nil, id.PatientID{}, false
	}
	patientID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParsePatientID)
	if !ok {
		return nil, id.PatientID{}, false
	}
	return p, patientID, true
}
