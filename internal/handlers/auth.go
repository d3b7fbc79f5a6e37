package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/portfolio/internal/models"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string, identity models.Identity) (*models.Session, error)
}

// AuthHandler handles admin sign-in.
type AuthHandler struct {
	service AuthServiceInterface
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip, ua := pkghttp.ResolveIdentity(r.Header)
	session, err := h.service.Login(r.Context(), req.Email, req.Password, models.Identity{IPAddress: ip, UserAgent: ua})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid login credentials")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Account is not authorized for admin access")
		default:
			h.logger.Error("login failed", slog.String("error", err.Error()))
			pkghttp.WriteInternalError(w, "An unexpected error occurred. Please try again.")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, session)
}
