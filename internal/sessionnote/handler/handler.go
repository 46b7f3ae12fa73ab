package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"peegflow/internal/sessionnote/models"
	"peegflow/internal/sessionnote/service"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/httputil"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/requestcontext"
)

type Service interface {
	Create(ctx context.Context, p *id.Principal, cmd service.CreateCommand) (*models.Note, error)
	Get(ctx context.Context, p *id.Principal, noteID id.SessionNoteID) (*models.Note, error)
	Update(ctx context.Context, p *id.Principal, noteID id.SessionNoteID, patch models.Patch) (*models.Note, error)
	ListByPatient(ctx context.Context, p *id.Principal, patientID id.PatientID, month *time.Time) ([]*models.Note, error)
	ExportPDF(ctx context.Context, p *id.Principal, noteID id.SessionNoteID) (*service.Export, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(h.logger, id.RoleAdmin))
		r.Post("/session-notes", h.HandleCreate)
		r.Get("/session-notes/patient/{patientID}", h.HandleListByPatient)
		r.Get("/session-notes/{id}", h.HandleGet)
		r.Patch("/session-notes/{id}", h.HandleUpdate)
		r.Get("/session-notes/{id}/pdf", h.HandlePDF)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateNoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	note, err := h.service.Create(ctx, p, req.cmd)
	if err != nil {
		h.logger.WarnContext(ctx, "create session note failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toNoteResponse(note))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, noteID, ok := h.target(w, r)
	if !ok {
		return
	}
	note, err := h.service.Get(ctx, p, noteID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toNoteResponse(note))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, noteID, ok := h.target(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateNoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	note, err := h.service.Update(ctx, p, noteID, req.patch)
	if err != nil {
		h.logger.WarnContext(ctx, "update session note failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toNoteResponse(note))
}

// HandleListByPatient lists a patient's notes, optionally for one month.
func (h *Handler) HandleListByPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	patientID, ok := httputil.PathID(w, chi.URLParam(r, "patientID"), id.ParsePatientID)
	if !ok {
		return
	}
	var month *time.Time
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := id.ParseMonth(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		month = &m
	}

	notes, err := h.service.ListByPatient(ctx, p, patientID, month)
	if err != nil {
		h.logger.ErrorContext(ctx, "list session notes failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toNoteResponses(notes))
}

func (h *Handler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, noteID, ok := h.target(w, r)
	if !ok {
		return
	}
	export, err := h.service.ExportPDF(ctx, p, noteID)
	if err != nil {
		h.logger.ErrorContext(ctx, "export session note failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Body); err != nil {
		h.logger.WarnContext(ctx, "write session note pdf failed", "error", err, "request_id", requestID)
	}
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

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (*id.Principal, id.SessionNoteID, bool) {
	p, ok := h.principal(w, r)
	if !ok {
		return nil, id.SessionNoteID{}, false
	}
	noteID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseSessionNoteID)
	if !ok {
		return nil, id.SessionNoteID{}, false
	}
	return p, noteID, true
}
