package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BradenHooton/portfolio/internal/metrics"
	"github.com/BradenHooton/portfolio/internal/models"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/google/uuid"
)

const (
	DefaultLoginAttemptListLimit = 100
	MaxLoginAttemptListLimit     = 1000

	recentAttemptWindow = 24 * time.Hour
	maxErrorLength      = 500
)

// LoginAttemptRepository defines persistence for login attempts
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error)
	List(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
	Stats(ctx context.Context, since time.Time) (*models.LoginAttemptStats, error)
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginAttemptInput describes one sign-in outcome to record.
type LoginAttemptInput struct {
	Email        string
	Success      bool
	ErrorMessage string
	Identity     models.Identity
}

// LoginAttemptService records admin sign-in attempts and serves the
// monitoring and retention operations over them.
type LoginAttemptService struct {
	repo         LoginAttemptRepository
	logger       *slog.Logger
	audit        *pkglogger.AuditLogger
	metrics      metrics.Recorder
	views        *ViewCache
	defaultLimit int
	now          func() time.Time
}

func NewLoginAttemptService(
	repo LoginAttemptRepository,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
	recorder metrics.Recorder,
	views *ViewCache,
	defaultLimit int,
) *LoginAttemptService {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	if defaultLimit <= 0 || defaultLimit > MaxLoginAttemptListLimit {
		defaultLimit = DefaultLoginAttemptListLimit
	}
	return &LoginAttemptService{
		repo:         repo,
		logger:       logger,
		audit:        audit,
		metrics:      recorder,
		views:        views,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// WithClock swaps the time source. Intended for tests.
func (s *LoginAttemptService) WithClock(now func() time.Time) *LoginAttemptService {
	s.now = now
	return s
}

// Log persists one attempt and returns the stored row.
func (s *LoginAttemptService) Log(ctx context.Context, in LoginAttemptInput) (*models.LoginAttempt, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, models.NewValidationError("email", "Email is required")
	}

	attempt := &models.LoginAttempt{
		Email:     email,
		IPAddress: orUnknown(in.Identity.IPAddress),
		UserAgent: orUnknown(in.Identity.UserAgent),
		Success:   in.Success,
	}
	if msg := strings.TrimSpace(in.ErrorMessage); msg != "" {
		msg = truncate(msg, maxErrorLength)
		attempt.ErrorMessage = &msg
	}

	created, err := s.repo.Create(ctx, attempt)
	if err != nil {
		s.metrics.RecordLoginAttemptWriteFailure()
		return nil, fmt.Errorf("record login attempt: %w", err)
	}

	s.metrics.RecordLoginAttempt(in.Success)
	s.views.Invalidate(ViewAdminDashboard)
	if s.audit != nil {
		s.audit.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_attempt",
			Email:         email,
			IPAddress:     attempt.IPAddress,
			UserAgent:     attempt.UserAgent,
			Success:       in.Success,
			FailureReason: in.ErrorMessage,
		})
	}
	return created, nil
}

// Record is the best-effort form of Log used inside the sign-in flow.
// Failures are logged and counted, never returned, so they cannot change
// the outcome of the login itself.
func (s *LoginAttemptService) Record(ctx context.Context, in LoginAttemptInput) {
	if _, err := s.Log(ctx, in); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("email", pkglogger.SanitizedEmail(in.Email)),
			slog.Bool("success", in.Success),
			slog.Any("error", err),
		)
	}
}

// List returns up to limit attempts, newest first. Non-positive limits use
// the configured default; limits are capped at MaxLoginAttemptListLimit.
func (s *LoginAttemptService) List(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxLoginAttemptListLimit {
		limit = MaxLoginAttemptListLimit
	}

	attempts, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list login attempts: %w", err)
	}
	return attempts, nil
}

// Stats reports totals plus attempts in the last 24 hours.
func (s *LoginAttemptService) Stats(ctx context.Context) (*models.LoginAttemptStats, error) {
	stats, err := s.repo.Stats(ctx, s.now().Add(-recentAttemptWindow))
	if err != nil {
		return nil, fmt.Errorf("login attempt stats: %w", err)
	}
	stats.Failed = stats.Total - stats.Successful
	return stats, nil
}

// Delete removes one attempt. Unknown or malformed ids are a no-op.
func (s *LoginAttemptService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		s.logger.Debug("ignoring delete of malformed login attempt id", slog.String("id", id))
		return nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete login attempt: %w", err)
	}
	s.views.Invalidate(ViewAdminDashboard)
	return nil
}

// PurgeOlderThan deletes every attempt recorded before now minus days.
// An attempt exactly at the cutoff is kept.
func (s *LoginAttemptService) PurgeOlderThan(ctx context.Context, days int) (*models.PurgeResult, error) {
	if days < 1 {
		return nil, models.NewValidationError("days", "days must be at least 1")
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge login attempts: %w", err)
	}

	s.metrics.RecordPurge(deleted)
	if deleted > 0 {
		s.views.Invalidate(ViewAdminDashboard)
	}
	s.logger.Info("login attempts purged",
		slog.Int("retention_days", days),
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)

	return &models.PurgeResult{DeletedCount: deleted, CutoffDate: cutoff}, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// stay on a rune boundary
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
