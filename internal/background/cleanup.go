package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
)

// AttemptPurger deletes login attempts older than a number of days.
type AttemptPurger interface {
	PurgeOlderThan(ctx context.Context, days int) (*models.PurgeResult, error)
}

// CleanupManager periodically enforces the login-attempt retention window.
// It complements the cron-driven cleanup endpoint for deployments without one.
type CleanupManager struct {
	purger        AttemptPurger
	logger        *slog.Logger
	interval      time.Duration
	retentionDays int
	stopCh        chan struct{}
	stopOnce      sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(purger AttemptPurger, logger *slog.Logger, interval time.Duration, retentionDays int) *CleanupManager {
	return &CleanupManager{
		purger:        purger,
		logger:        logger,
		interval:      interval,
		retentionDays: retentionDays,
		stopCh:        make(chan struct{}),
	}
}

// Start runs one purge immediately and then one per interval until Stop is
// called or ctx is cancelled.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("login attempt cleanup stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("login attempt cleanup context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := cm.purger.PurgeOlderThan(cleanupCtx, cm.retentionDays)
	if err != nil {
		cm.logger.Error("scheduled login attempt cleanup failed", slog.Any("error", err))
		return
	}

	if result.DeletedCount > 0 {
		cm.logger.Info("scheduled login attempt cleanup completed",
			slog.Int64("rows_deleted", result.DeletedCount),
			slog.Time("cutoff", result.CutoffDate))
	}
}

// Stop signals the cleanup manager to stop. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
