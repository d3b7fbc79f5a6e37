package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/BradenHooton/portfolio/internal/services"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
	"github.com/go-chi/chi/v5"
)

// ProjectServiceInterface defines the project service contract.
type ProjectServiceInterface interface {
	List(ctx context.Context, page, limit int) (*models.ProjectList, error)
	ListPublic(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, key string, includePrivate bool) (*models.Project, error)
	Create(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id string) error
	ToggleVisibility(ctx context.Context, id string) (*models.Project, error)
	Bulk(ctx context.Context, action models.BulkAction, ids []string) (*models.BulkResult, error)
	UploadImage(ctx context.Context, id string, upload services.ImageUpload) (*models.Project, error)
	RemoveImage(ctx context.Context, id string) (*models.Project, error)
}

// ProjectHandler serves public project pages and the admin project editor.
type ProjectHandler struct {
	service        ProjectServiceInterface
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewProjectHandler(service ProjectServiceInterface, logger *slog.Logger, maxUploadBytes int64) *ProjectHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &ProjectHandler{service: service, logger: logger, maxUploadBytes: maxUploadBytes}
}

// BulkRequest is the body of POST /admin/projects/bulk.
type BulkRequest struct {
	Action models.BulkAction `json:"action" validate:"required,oneof=delete show hide feature unfeature"`
	IDs    []string          `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

// ListPublic handles GET /projects
func (h *ProjectHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListPublic(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load projects")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// GetPublic handles GET /projects/{key} where key is a slug or id.
func (h *ProjectHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, chi.URLParam(r, "key"), false)
}

// List handles GET /admin/projects?page=&limit=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load projects")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, list)
}

// TechStack handles GET /admin/projects/tech-stack
func (h *ProjectHandler) TechStack(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"options": models.TechStackOptions})
}

// Get handles GET /admin/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, chi.URLParam(r, "id"), true)
}

func (h *ProjectHandler) get(w http.ResponseWriter, r *http.Request, key string, includePrivate bool) {
	project, err := h.service.Get(r.Context(), key, includePrivate)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Project not found")
			return
		}
		writeServiceError(w, h.logger, err, "Failed to load project")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

// Create handles POST /admin/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create project")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, project)
}

// Update handles PUT /admin/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeProjectError(w, err, "Failed to update project")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

// Delete handles DELETE /admin/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeProjectError(w, err, "Failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleVisibility handles POST /admin/projects/{id}/toggle-visibility
func (h *ProjectHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.ToggleVisibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeProjectError(w, err, "Failed to update visibility")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

// Bulk handles POST /admin/projects/bulk
func (h *ProjectHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Bulk(r.Context(), req.Action, req.IDs)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "One or more projects were not found; nothing was changed")
			return
		}
		writeServiceError(w, h.logger, err, "Bulk action failed")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// UploadImage handles POST /admin/projects/{id}/image (multipart field "image")
func (h *ProjectHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// headroom for multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+64<<10)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			pkghttp.WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Image is too large")
			return
		}
		pkghttp.WriteBadRequest(w, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		pkghttp.WriteBadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		sniff := make([]byte, 512)
		n, _ := file.Read(sniff)
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, 0); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid image file")
			return
		}
	}

	project, err := h.service.UploadImage(r.Context(), chi.URLParam(r, "id"), services.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.writeProjectError(w, err, "Failed to upload image")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

// RemoveImage handles DELETE /admin/projects/{id}/image
func (h *ProjectHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.RemoveImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeProjectError(w, err, "Failed to remove image")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) writeProjectError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, models.ErrNotFound) {
		pkghttp.WriteNotFound(w, "Project not found")
		return
	}
	writeServiceError(w, h.logger, err, fallback)
}
