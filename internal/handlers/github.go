package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/portfolio/internal/models"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
)

// GitHubServiceInterface defines the contributions widget contract.
type GitHubServiceInterface interface {
	Contributions(ctx context.Context, username string) (*models.ContributionStats, error)
}

// GitHubHandler serves the homepage contribution widget.
type GitHubHandler struct {
	service GitHubServiceInterface
	logger  *slog.Logger
}

func NewGitHubHandler(service GitHubServiceInterface, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{service: service, logger: logger}
}

// Contributions handles GET /github-contributions?username=
func (h *GitHubHandler) Contributions(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Contributions(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		var ve *models.ValidationError
		switch {
		case errors.Is(err, models.ErrGitHubNotConfigured):
			pkghttp.WriteInternalError(w, "Missing GITHUB_TOKEN in environment variables")
		case errors.As(err, &ve):
			pkghttp.WriteBadRequest(w, ve.Message)
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "No contribution data found for this user")
		default:
			h.logger.Error("failed to fetch github contributions", slog.String("error", err.Error()))
			pkghttp.WriteInternalError(w, "Failed to fetch GitHub contributions")
		}
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=600")
	pkghttp.WriteJSON(w, http.StatusOK, stats)
}
