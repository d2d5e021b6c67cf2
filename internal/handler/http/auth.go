package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/service"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  logger,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.service.Register(r.Context(), req)
	httputil.WriteData(w, h.service.State())
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			// Records the failure and clears any session.
			h.service.Login(r.Context(), req.Email, req.Password)
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if !h.service.Login(r.Context(), req.Email, req.Password) {
		msg := h.service.State().Error
		if msg == "" {
			msg = service.MsgLoginFailed
		}
		httputil.WriteError(w, r, apperrors.Unauthorized(msg), h.logger)
		return
	}

	httputil.WriteData(w, h.service.State())
}

// Check handles POST /api/v1/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.service.CheckAuth(r.Context())
	httputil.WriteData(w, h.service.State())
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	httputil.WriteData(w, h.service.State())
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.State())
}
