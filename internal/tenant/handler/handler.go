package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"peegflow/internal/tenant/models"
	"peegflow/internal/tenant/service"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/httputil"
	"peegflow/pkg/requestcontext"
)

// Service is the tenant surface exposed to platform operators.
type Service interface {
	CreateTenant(ctx context.Context, cmd service.CreateTenantCommand) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]*models.Tenant, error)
	GetTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenantID id.TenantID, patch models.Patch) (*models.Tenant, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the tenant routes. The caller wraps r with the platform
// admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Post("/platform/tenants", h.HandleCreateTenant)
	r.Get("/platform/tenants", h.HandleListTenants)
	r.Get("/platform/tenants/{id}", h.HandleGetTenant)
	r.Patch("/platform/tenants/{id}", h.HandleUpdateTenant)
}

func (h *Handler) HandleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTenantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tenant, err := h.service.CreateTenant(ctx, service.CreateTenantCommand{
		Name:             req.Name,
		Slug:             req.Slug,
		LicenseExpiresAt: req.LicenseExpiresAt.Value,
		AdminName:        req.AdminName,
		AdminEmail:       req.AdminEmail,
		AdminPassword:    req.AdminPassword,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "create tenant failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toTenantResponse(tenant))
}

func (h *Handler) HandleListTenants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenants, err := h.service.ListTenants(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tenants failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTenantResponses(tenants))
}

func (h *Handler) HandleGetTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseTenantID)
	if !ok {
		return
	}

	tenant, err := h.service.GetTenant(ctx, tenantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get tenant failed", "error", err, "request_id", requestcontext.RequestID(ctx), "tenant_id", tenantID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTenantResponse(tenant))
}

// HandleUpdateTenant toggles activity, renames or relicenses a tenant.
func (h *Handler) HandleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	tenantID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseTenantID)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateTenantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tenant, err := h.service.UpdateTenant(ctx, tenantID, req.patch())
	if err != nil {
		h.logger.ErrorContext(ctx, "update tenant failed", "error", err, "request_id", requestID, "tenant_id", tenantID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTenantResponse(tenant))
}
