package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/BradenHooton/portfolio/internal/auth"
	"github.com/BradenHooton/portfolio/internal/models"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	DefaultProjectPageSize = 20
	MaxProjectPageSize     = 100
	MaxBulkProjectIDs      = 100

	defaultPublicProjectsTTL = time.Minute
	defaultMaxImageBytes     = 5 * 1024 * 1024
	maxSlugAttempts          = 100
)

// ProjectRepository defines persistence for projects
type ProjectRepository interface {
	List(ctx context.Context, limit, offset int) ([]*models.Project, error)
	Count(ctx context.Context) (int64, error)
	ListPublic(ctx context.Context) ([]*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p *models.Project) (*models.Project, error)
	Update(ctx context.Context, id string, p *models.Project) (*models.Project, error)
	SetImageURL(ctx context.Context, id string, imageURL *string) (*models.Project, error)
	ToggleVisibility(ctx context.Context, id string) (*models.Project, error)
	Delete(ctx context.Context, id string) (*models.Project, error)
	BulkDelete(ctx context.Context, ids []string) ([]*models.Project, error)
	BulkSetVisibility(ctx context.Context, ids []string, visibility models.ProjectVisibility) error
	BulkSetFeatured(ctx context.Context, ids []string, featured bool) error
}

// ProjectServiceConfig tunes caching and uploads.
type ProjectServiceConfig struct {
	PublicCacheTTL time.Duration
	MaxImageBytes  int64
}

// ImageUpload is one thumbnail file received from the admin form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProjectService handles project business logic
type ProjectService struct {
	repo      ProjectRepository
	images    ImageStore
	views     *ViewCache
	audit     *pkglogger.AuditLogger
	logger    *slog.Logger
	sanitizer *bluemonday.Policy
	cfg       ProjectServiceConfig
	now       func() time.Time
}

// NewProjectService creates a project service. images may be nil when
// object storage is not configured; uploads then fail with ErrStorageDisabled.
func NewProjectService(
	repo ProjectRepository,
	images ImageStore,
	views *ViewCache,
	audit *pkglogger.AuditLogger,
	logger *slog.Logger,
	cfg ProjectServiceConfig,
) *ProjectService {
	if cfg.PublicCacheTTL <= 0 {
		cfg.PublicCacheTTL = defaultPublicProjectsTTL
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = defaultMaxImageBytes
	}
	return &ProjectService{
		repo:      repo,
		images:    images,
		views:     views,
		audit:     audit,
		logger:    logger,
		sanitizer: bluemonday.UGCPolicy(),
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock swaps the time source. Intended for tests.
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	s.now = now
	return s
}

// List returns one page of all projects, newest first, with the exact total.
func (s *ProjectService) List(ctx context.Context, page, limit int) (*models.ProjectList, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultProjectPageSize
	}
	if limit > MaxProjectPageSize {
		limit = MaxProjectPageSize
	}

	projects, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list projects: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("count projects: %w", err)
	}

	return &models.ProjectList{Projects: projects, Total: total, Page: page, Limit: limit}, nil
}

// ListPublic returns Public projects, featured first then newest.
func (s *ProjectService) ListPublic(ctx context.Context) ([]*models.Project, error) {
	projects, err := cachedView(s.views, ViewPublicProjects, s.cfg.PublicCacheTTL, func() ([]*models.Project, error) {
		return s.repo.ListPublic(ctx)
	})
	if err != nil {
		s.logger.Error("failed to list public projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list public projects: %w", err)
	}
	return projects, nil
}

// Get looks a project up by id when key is a UUID, otherwise by slug.
// Unless includePrivate is set, non-public projects are reported as not found.
func (s *ProjectService) Get(ctx context.Context, key string, includePrivate bool) (*models.Project, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, models.ErrNotFound
	}

	var (
		project *models.Project
		err     error
	)
	if _, parseErr := uuid.Parse(key); parseErr == nil {
		project, err = s.repo.GetByID(ctx, key)
	} else {
		project, err = s.repo.GetBySlug(ctx, strings.ToLower(key))
	}
	if err != nil {
		return nil, err
	}

	if !includePrivate && !project.IsPublic() {
		return nil, models.ErrNotFound
	}
	return project, nil
}

// Create validates in, derives a unique slug and stores the project.
func (s *ProjectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := ValidateProjectInput(&in); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, in.Title, "")
	if err != nil {
		return nil, err
	}

	project := s.projectFromInput(in)
	project.Slug = slug

	created, err := s.repo.Create(ctx, project)
	if err != nil {
		s.logger.Error("failed to create project", slog.String("error", err.Error()))
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.afterWrite("project.create", admin, created.ID, created.Slug)
	return created, nil
}

// Update overwrites the editable fields of project id. The slug is
// re-derived only when the title changes. A nil image URL keeps the
// current image.
func (s *ProjectService) Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, models.ErrNotFound
	}
	if err := ValidateProjectInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project := s.projectFromInput(in)
	project.Slug = existing.Slug
	if in.Title != existing.Title {
		if project.Slug, err = s.uniqueSlug(ctx, in.Title, id); err != nil {
			return nil, err
		}
	}
	if project.ImageURL == nil {
		project.ImageURL = existing.ImageURL
	}

	updated, err := s.repo.Update(ctx, id, project)
	if err != nil {
		s.logger.Error("failed to update project", slog.String("id", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.afterWrite("project.update", admin, updated.ID, updated.Slug)
	return updated, nil
}

// Delete removes the project and, best-effort, its stored image.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if !isUUID(id) {
		return models.ErrNotFound
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.removeImages(ctx, deleted)
	s.afterWrite("project.delete", admin, deleted.ID, deleted.Slug)
	return nil
}

// ToggleVisibility flips Public and Hidden. Drafts are rejected.
func (s *ProjectService) ToggleVisibility(ctx context.Context, id string) (*models.Project, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, models.ErrNotFound
	}

	project, err := s.repo.ToggleVisibility(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		if _, getErr := s.repo.GetByID(ctx, id); getErr == nil {
			return nil, models.NewValidationError("visibility", "Draft projects must be published through edit")
		}
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.afterWrite("project.toggle_visibility", admin, project.ID, string(project.Visibility))
	return project, nil
}

// Bulk applies action to every id. The batch succeeds or fails as a whole.
func (s *ProjectService) Bulk(ctx context.Context, action models.BulkAction, ids []string) (*models.BulkResult, error) {
	switch action {
	case models.BulkActionDelete:
		return s.BulkDelete(ctx, ids)
	case models.BulkActionShow:
		return s.BulkSetVisibility(ctx, ids, true)
	case models.BulkActionHide:
		return s.BulkSetVisibility(ctx, ids, false)
	case models.BulkActionFeature:
		return s.BulkSetFeatured(ctx, ids, true)
	case models.BulkActionUnfeature:
		return s.BulkSetFeatured(ctx, ids, false)
	default:
		return nil, models.NewValidationError("action", "Unknown bulk action")
	}
}

func (s *ProjectService) BulkDelete(ctx context.Context, ids []string) (*models.BulkResult, error) {
	admin, ids, err := s.prepareBulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.BulkDelete(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.removeImages(ctx, deleted...)
	s.afterBulk(models.BulkActionDelete, admin, ids)
	return &models.BulkResult{Action: models.BulkActionDelete, Affected: len(deleted)}, nil
}

// BulkSetVisibility makes every id Public (visible) or Hidden.
func (s *ProjectService) BulkSetVisibility(ctx context.Context, ids []string, visible bool) (*models.BulkResult, error) {
	admin, ids, err := s.prepareBulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	action, visibility := models.BulkActionHide, models.VisibilityHidden
	if visible {
		action, visibility = models.BulkActionShow, models.VisibilityPublic
	}

	if err := s.repo.BulkSetVisibility(ctx, ids, visibility); err != nil {
		return nil, err
	}

	s.afterBulk(action, admin, ids)
	return &models.BulkResult{Action: action, Affected: len(ids)}, nil
}

func (s *ProjectService) BulkSetFeatured(ctx context.Context, ids []string, featured bool) (*models.BulkResult, error) {
	admin, ids, err := s.prepareBulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	action := models.BulkActionUnfeature
	if featured {
		action = models.BulkActionFeature
	}

	if err := s.repo.BulkSetFeatured(ctx, ids, featured); err != nil {
		return nil, err
	}

	s.afterBulk(action, admin, ids)
	return &models.BulkResult{Action: action, Affected: len(ids)}, nil
}

// UploadImage stores a new thumbnail for project id and replaces the old one.
func (s *ProjectService) UploadImage(ctx context.Context, id string, upload ImageUpload) (*models.Project, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, models.ErrStorageDisabled
	}
	if !isUUID(id) {
		return nil, models.ErrNotFound
	}
	if upload.Size <= 0 {
		return nil, models.NewValidationError("image", "Image file is empty")
	}
	if upload.Size > s.cfg.MaxImageBytes {
		return nil, models.NewValidationError("image", fmt.Sprintf("Image must be %d MB or smaller", s.cfg.MaxImageBytes/(1024*1024)))
	}
	if !strings.HasPrefix(strings.ToLower(upload.ContentType), "image/") {
		return nil, models.NewValidationError("image", "File must be an image")
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%d-%s", id, s.now().UnixMilli(), sanitizeFilename(upload.Filename))
	url, err := s.images.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		s.logger.Error("failed to upload project image", slog.String("id", id), slog.String("error", err.Error()))
		return nil, err
	}

	updated, err := s.repo.SetImageURL(ctx, id, &url)
	if err != nil {
		if delErr := s.images.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned image", slog.String("key", key), slog.String("error", delErr.Error()))
		}
		return nil, fmt.Errorf("set project image: %w", err)
	}

	s.removeImages(ctx, existing)
	s.afterWrite("project.image_upload", admin, updated.ID, key)
	return updated, nil
}

// RemoveImage clears the project's thumbnail and deletes the stored object.
func (s *ProjectService) RemoveImage(ctx context.Context, id string) (*models.Project, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, models.ErrNotFound
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetImageURL(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("clear project image: %w", err)
	}

	s.removeImages(ctx, existing)
	s.afterWrite("project.image_remove", admin, updated.ID, updated.Slug)
	return updated, nil
}

func (s *ProjectService) projectFromInput(in models.ProjectInput) *models.Project {
	return &models.Project{
		Title:            in.Title,
		ShortDescription: in.ShortDescription,
		FullDescription:  s.sanitizer.Sanitize(in.FullDescription),
		TechStack:        in.TechStack,
		GitHubURL:        in.GitHubURL,
		LiveDemoURL:      in.LiveDemoURL,
		ImageURL:         in.ImageURL,
		Status:           in.Status,
		Visibility:       in.Visibility,
		Featured:         in.Featured,
	}
}

// uniqueSlug derives a slug from title and appends -2, -3, ... until no
// project other than excludeID holds it.
func (s *ProjectService) uniqueSlug(ctx context.Context, title, excludeID string) (string, error) {
	base := models.GenerateSlug(title)
	if base == "" {
		return "", models.NewValidationError("title", "Title must contain letters or numbers")
	}

	candidate := base
	for n := 2; n <= maxSlugAttempts; n++ {
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("%w: slug %q exhausted", models.ErrConflict, base)
}

func (s *ProjectService) prepareBulk(ctx context.Context, ids []string) (*models.Admin, []string, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, nil, err
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if seen[id] {
			continue
		}
		if !isUUID(id) {
			return nil, nil, models.NewValidationError("ids", "Invalid project id")
		}
		seen[id] = true
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return nil, nil, models.NewValidationError("ids", "Select at least one project")
	}
	if len(unique) > MaxBulkProjectIDs {
		return nil, nil, models.NewValidationError("ids", fmt.Sprintf("At most %d projects per bulk action", MaxBulkProjectIDs))
	}
	return admin, unique, nil
}

// removeImages deletes stored thumbnails of projects. Failures are logged.
func (s *ProjectService) removeImages(ctx context.Context, projects ...*models.Project) {
	if s.images == nil {
		return
	}

	keys := make([]string, 0, len(projects))
	for _, p := range projects {
		if p == nil || p.ImageURL == nil {
			continue
		}
		if key, ok := s.images.KeyFromURL(*p.ImageURL); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := s.images.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to delete project images", slog.Int("count", len(keys)), slog.String("error", err.Error()))
	}
}

func (s *ProjectService) afterWrite(event string, admin *models.Admin, id, detail string) {
	s.views.Invalidate(ViewPublicProjects, ViewAdminDashboard)
	if s.audit != nil {
		s.audit.LogAdminAction(event, admin.Email, map[string]string{
			"project_id": id,
			"detail":     detail,
		})
	}
}

func (s *ProjectService) afterBulk(action models.BulkAction, admin *models.Admin, ids []string) {
	s.views.Invalidate(ViewPublicProjects, ViewAdminDashboard)
	if s.audit != nil {
		s.audit.LogAdminAction("project.bulk_"+string(action), admin.Email, map[string]string{
			"project_ids": strings.Join(ids, ","),
		})
	}
}

// requireAdmin returns the admin attached by the auth middleware.
func requireAdmin(ctx context.Context) (*models.Admin, error) {
	admin, ok := auth.AdminFromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return admin, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

func sanitizeFilename(name string) string {
	name = strings.ToLower(path.Base(strings.ReplaceAll(name, `\`, "/")))
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, ".-")
	if name == "" {
		return "image"
	}
	return name
}
