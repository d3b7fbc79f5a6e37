package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/portfolio/internal/auth"
	"github.com/BradenHooton/portfolio/internal/services"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
)

// AdminServiceInterface defines the dashboard service contract.
type AdminServiceInterface interface {
	Dashboard(ctx context.Context) (*services.Dashboard, error)
}

// AdminHandler handles admin dashboard HTTP requests.
type AdminHandler struct {
	service AdminServiceInterface
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AdminServiceInterface, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: logger}
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to retrieve dashboard")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dashboard)
}

// Me handles GET /admin/me
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.AdminFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"id":    admin.UserID,
		"email": admin.Email,
	})
}
