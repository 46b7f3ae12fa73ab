package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"peegflow/internal/finance/export"
	"peegflow/internal/finance/models"
	"peegflow/internal/finance/service"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/requestcontext"
)

type Service interface {
	Summary(ctx context.Context, p *id.Principal, q models.PeriodQuery) (*models.Summary, error)
	ListExpenses(ctx context.Context, p *id.Principal, month time.Time) ([]*models.Expense, error)
	CreateExpense(ctx context.Context, p *id.Principal, cmd service.CreateExpenseCommand) (*models.Expense, error)
	DeleteExpense(ctx context.Context, p *id.Principal, expenseID id.ExpenseID) error
	ExportMonth(ctx context.Context, p *id.Principal, month time.Time) (*service.Report, error)
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
		r.Get("/admin/finance/summary", h.HandleSummary)
		r.Get("/admin/expenses", h.HandleListExpenses)
		r.Post("/admin/expenses", h.HandleCreateExpense)
		r.Get("/admin/expenses/export", h.HandleExport)
		r.Delete("/admin/expenses/{id}", h.HandleDeleteExpense)
	})
}

// HandleSummary accepts date_from+date_to, day or month, in that order of
// precedence.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	summary, err := h.service.Summary(ctx, p, models.PeriodQuery{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Day:      q.Get("day"),
		Month:    q.Get("month"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "finance summary failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) HandleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	month, err := requiredMonth(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	expenses, err := h.service.ListExpenses(ctx, p, month)
	if err != nil {
		h.logger.ErrorContext(ctx, "list expenses failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (h *Handler) HandleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateExpenseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cmd, err := req.command()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	expense, err := h.service.CreateExpense(ctx, p, cmd)
	if err != nil {
		h.logger.WarnContext(ctx, "create expense failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (h *Handler) HandleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	expenseID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseExpenseID)
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(ctx, p, expenseID); err != nil {
		h.logger.WarnContext(ctx, "delete expense failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	month, err := requiredMonth(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	report, err := h.service.ExportMonth(ctx, p, month)
	if err != nil {
		h.logger.ErrorContext(ctx, "export expenses failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report.Body); err != nil {
		h.logger.WarnContext(ctx, "write expense report failed", "error", err, "request_id", requestID)
	}
}

func requiredMonth(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "month is required (YYYY-MM)")
	}
	return id.ParseMonth(raw)
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
