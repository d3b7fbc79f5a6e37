package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
)

const (
	dashboardTTL            = 30 * time.Second
	dashboardRecentAttempts = 10
	dashboardRecentProjects = 5
)

// AdminProjectRepository is the subset of ProjectRepository methods needed by AdminService.
type AdminProjectRepository interface {
	Counts(ctx context.Context) (*models.ProjectCounts, error)
	ListRecentlyUpdated(ctx context.Context, limit int) ([]*models.Project, error)
}

// AdminLoginAttempts is the subset of LoginAttemptService needed by AdminService.
type AdminLoginAttempts interface {
	Stats(ctx context.Context) (*models.LoginAttemptStats, error)
	List(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
}

// Dashboard is the admin landing page read model.
type Dashboard struct {
	Projects       models.ProjectCounts     `json:"projects"`
	LoginAttempts  models.LoginAttemptStats `json:"login_attempts"`
	RecentAttempts []*models.LoginAttempt   `json:"recent_attempts"`
	RecentProjects []*models.Project        `json:"recent_projects"`
	GeneratedAt    time.Time                `json:"generated_at"`
}

// AdminService aggregates data for admin dashboard endpoints.
type AdminService struct {
	projects AdminProjectRepository
	attempts AdminLoginAttempts
	views    *ViewCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(projects AdminProjectRepository, attempts AdminLoginAttempts, views *ViewCache, logger *slog.Logger) *AdminService {
	return &AdminService{
		projects: projects,
		attempts: attempts,
		views:    views,
		logger:   logger,
		now:      time.Now,
	}
}

// Dashboard returns project counts, login-attempt stats and the most recent
// activity. The result is cached briefly and dropped on any write.
func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	return cachedView(s.views, ViewAdminDashboard, dashboardTTL, func() (*Dashboard, error) {
		return s.buildDashboard(ctx)
	})
}

func (s *AdminService) buildDashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.projects.Counts(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to count projects", slog.Any("error", err))
		return nil, fmt.Errorf("count projects: %w", err)
	}

	stats, err := s.attempts.Stats(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to load login stats", slog.Any("error", err))
		return nil, fmt.Errorf("login attempt stats: %w", err)
	}

	attempts, err := s.attempts.List(ctx, dashboardRecentAttempts)
	if err != nil {
		s.logger.Error("dashboard: failed to list login attempts", slog.Any("error", err))
		return nil, fmt.Errorf("list login attempts: %w", err)
	}

	projects, err := s.projects.ListRecentlyUpdated(ctx, dashboardRecentProjects)
	if err != nil {
		s.logger.Error("dashboard: failed to list recent projects", slog.Any("error", err))
		return nil, fmt.Errorf("list recent projects: %w", err)
	}

	return &Dashboard{
		Projects:       *counts,
		LoginAttempts:  *stats,
		RecentAttempts: attempts,
		RecentProjects: projects,
		GeneratedAt:    s.now().UTC(),
	}, nil
}
