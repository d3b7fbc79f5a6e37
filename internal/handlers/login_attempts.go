package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/BradenHooton/portfolio/internal/auth"
	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/BradenHooton/portfolio/internal/services"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// LoginAttemptServiceInterface defines the login attempt service contract.
type LoginAttemptServiceInterface interface {
	Log(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error)
	List(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
	Stats(ctx context.Context) (*models.LoginAttemptStats, error)
	Delete(ctx context.Context, id string) error
	PurgeOlderThan(ctx context.Context, days int) (*models.PurgeResult, error)
}

// LoginAttemptHandler serves the recorder endpoint, the cron cleanup
// endpoint and the admin monitoring pages.
type LoginAttemptHandler struct {
	service       LoginAttemptServiceInterface
	audit         *pkglogger.AuditLogger
	logger        *slog.Logger
	retentionDays int
}

func NewLoginAttemptHandler(service LoginAttemptServiceInterface, audit *pkglogger.AuditLogger, logger *slog.Logger, retentionDays int) *LoginAttemptHandler {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &LoginAttemptHandler{
		service:       service,
		audit:         audit,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// LogAttemptRequest is the body of POST /log-login-attempt.
type LogAttemptRequest struct {
	Email        string `json:"email"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
}

// PurgeRequest is the body of POST /admin/login-attempts/purge.
type PurgeRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=3650"`
}

// LoginAttemptView decorates an attempt with parsed user agent details.
type LoginAttemptView struct {
	*models.LoginAttempt
	Device  string `json:"device"`
	Browser string `json:"browser"`
}

// LoginAttemptListResponse is one filtered page of the admin listing.
type LoginAttemptListResponse struct {
	Attempts   []LoginAttemptView `json:"attempts"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// LogAttempt handles POST /log-login-attempt
func (h *LoginAttemptHandler) LogAttempt(w http.ResponseWriter, r *http.Request) {
	var req LogAttemptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Error("failed to log login attempt", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to log attempt")
		return
	}

	ip, ua := pkghttp.ResolveIdentity(r.Header)
	_, err := h.service.Log(r.Context(), services.LoginAttemptInput{
		Email:        req.Email,
		Success:      req.Success,
		ErrorMessage: req.ErrorMessage,
		Identity:     models.Identity{IPAddress: ip, UserAgent: ua},
	})
	if err != nil {
		h.logger.Error("failed to log login attempt", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to log attempt")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Cleanup handles GET /cleanup-login-attempts
func (h *LoginAttemptHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PurgeOlderThan(r.Context(), h.retentionDays)
	if err != nil {
		h.logger.Error("auto-cleanup failed", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Cleanup failed")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"deletedCount": result.DeletedCount,
		"cutoffDate":   result.CutoffDate,
	})
}

// List handles GET /admin/login-attempts?q=&status=&page=&limit=
func (h *LoginAttemptHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status := models.LoginAttemptStatus(strings.ToLower(query.Get("status")))
	switch status {
	case "":
		status = models.LoginAttemptStatusAll
	case models.LoginAttemptStatusAll, models.LoginAttemptStatusSuccess, models.LoginAttemptStatusFailed:
	default:
		pkghttp.WriteBadRequest(w, "status must be one of: all success failed")
		return
	}

	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	attempts, err := h.service.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load login attempts")
		return
	}

	filtered := services.FilterLoginAttempts(attempts, services.LoginAttemptFilter{
		Query:  query.Get("q"),
		Status: status,
		Page:   page,
	})

	views := make([]LoginAttemptView, len(filtered.Attempts))
	for i, a := range filtered.Attempts {
		device, browser := pkghttp.DescribeUserAgent(a.UserAgent)
		views[i] = LoginAttemptView{LoginAttempt: a, Device: device, Browser: browser}
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginAttemptListResponse{
		Attempts:   views,
		Total:      filtered.Total,
		Page:       filtered.Page,
		PageSize:   filtered.PageSize,
		TotalPages: filtered.TotalPages,
	})
}

// Stats handles GET /admin/login-attempts/stats
func (h *LoginAttemptHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load login attempt stats")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

// Delete handles DELETE /admin/login-attempts/{id}
func (h *LoginAttemptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete login attempt")
		return
	}

	h.auditAdmin(r, "login_attempt.delete", map[string]string{"attempt_id": id})
	w.WriteHeader(http.StatusNoContent)
}

// Purge handles POST /admin/login-attempts/purge
func (h *LoginAttemptHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var req PurgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.PurgeOlderThan(r.Context(), req.Days)
	if err != nil {
		writeServiceError(w, h.logger, err, "Cleanup failed")
		return
	}

	h.auditAdmin(r, "login_attempt.purge", map[string]string{
		"days":    strconv.Itoa(req.Days),
		"deleted": strconv.FormatInt(result.DeletedCount, 10),
	})
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"deletedCount": result.DeletedCount,
		"cutoffDate":   result.CutoffDate,
	})
}

func (h *LoginAttemptHandler) auditAdmin(r *http.Request, event string, metadata map[string]string) {
	if h.audit == nil {
		return
	}
	admin, ok := auth.AdminFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.LogAdminAction(event, admin.Email, metadata)
}
