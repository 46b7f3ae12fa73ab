package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"peegflow/internal/auth/models"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/requestcontext"
	"peegflow/pkg/validation"
)

// Service is the auth surface used by the HTTP handlers.
type Service interface {
	LoginTenant(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	LoginPlatform(ctx context.Context, req *models.PlatformLoginRequest) (*models.TokenResponse, error)
	RegisterPractice(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the unauthenticated routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/platform/login", h.HandlePlatformLogin)
}

// RegisterTenant mounts routes that require a tenant principal.
func (h *Handler) RegisterTenant(r chi.Router) {
	r.Get("/auth/me", h.HandleMe)
}

// RegisterPlatform mounts routes that require a platform operator.
func (h *Handler) RegisterPlatform(r chi.Router) {
	r.Get("/platform/me", h.HandlePlatformMe)
}

// HandleLogin accepts JSON or an OAuth2 password-grant style form where
// "username" carries the email. The tenant slug may also come from the
// X-Tenant-Slug header.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := h.decodeLogin(w, r)
	if !ok {
		return
	}

	res, err := h.service.LoginTenant(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) decodeLogin(w http.ResponseWriter, r *http.Request) (*models.LoginRequest, bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req *models.LoginRequest
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, validation.MaxBodySize)
		if err := r.ParseForm(); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
			return nil, false
		}
		email := r.PostForm.Get("email")
		if email == "" {
			email = r.PostForm.Get("username")
		}
		req = &models.LoginRequest{
			TenantSlug: r.PostForm.Get("tenant_slug"),
			Email:      email,
			Password:   r.PostForm.Get("password"),
		}
	} else {
		decoded, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return nil, false
		}
		req = decoded
	}
	if req.TenantSlug == "" {
		req.TenantSlug = r.Header.Get(authmw.TenantSlugHeader)
	}
	if err := httputil.PrepareRequest(req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return nil, false
	}
	return req, true
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data")
}

// HandleRegister creates a practice and its first admin and returns a
// token for that admin.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.RegisterPractice(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "register practice failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandlePlatformLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.PlatformLoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.LoginPlatform(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "platform login failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := httputil.RequirePrincipal(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MeResponse{
		UserID:     p.UserID.String(),
		TenantID:   p.TenantID.String(),
		TenantSlug: p.TenantSlug,
		Email:      p.Email,
		Role:       p.Role.String(),
	})
}

func (h *Handler) HandlePlatformMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := httputil.RequirePlatformAdmin(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.PlatformMeResponse{
		AdminID: p.AdminID.String(),
		Email:   p.Email,
	})
}
