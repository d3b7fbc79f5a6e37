package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/portfolio/internal/models"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
)

// writeServiceError maps service errors onto HTTP responses. Validation
// messages are passed through; anything unrecognized is logged and reported
// with fallback.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		pkghttp.WriteBadRequest(w, ve.Message)
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication required")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Admin access required")
	case errors.Is(err, models.ErrRateLimitExceeded):
		pkghttp.WriteTooManyRequests(w, "Too many requests")
	case errors.Is(err, models.ErrStorageDisabled):
		pkghttp.WriteError(w, http.StatusServiceUnavailable, "storage_disabled", "Image storage is not configured")
	case errors.Is(err, models.ErrUpstream):
		logger.Error(fallback, slog.String("error", err.Error()))
		pkghttp.WriteBadGateway(w, fallback)
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, fallback)
	}
}
