package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/portfolio/internal/models"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
)

// ContactServiceInterface defines the contact form contract.
type ContactServiceInterface interface {
	Submit(ctx context.Context, ip string, msg models.ContactMessage) error
}

// ContactHandler handles the public contact form.
type ContactHandler struct {
	service ContactServiceInterface
	logger  *slog.Logger
}

func NewContactHandler(service ContactServiceInterface, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

// ContactRequest is the body of POST /contact. Website is a honeypot field
// that real visitors never fill in.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Website string `json:"website"`
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		// still submitted, empty, so it counts against the limit and fails validation
		h.logger.Debug("contact body did not decode", slog.String("error", err.Error()))
		req = ContactRequest{}
	}

	ip := pkghttp.ClientIP(r.Header)
	err := h.service.Submit(r.Context(), ip, models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Website: req.Website,
	})
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.Is(err, models.ErrRateLimitExceeded):
			pkghttp.WriteTooManyRequests(w, "Too many requests. Please try again in an hour.")
		case errors.Is(err, models.ErrMailerNotConfigured):
			h.logger.Error("contact form submitted but mailer is not configured")
			pkghttp.WriteInternalError(w, "API key not configured")
		case errors.As(err, &ve):
			pkghttp.WriteBadRequest(w, ve.Message)
		default:
			h.logger.Error("failed to send contact email", slog.String("error", err.Error()))
			pkghttp.WriteInternalError(w, "Failed to send email")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
