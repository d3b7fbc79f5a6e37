package services_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// MockLoginAttemptRepository implements services.LoginAttemptRepository for testing
type MockLoginAttemptRepository struct {
	CreateFunc          func(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error)
	ListFunc            func(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
	StatsFunc           func(ctx context.Context, since time.Time) (*models.LoginAttemptStats, error)
	DeleteFunc          func(ctx context.Context, id string) error
	DeleteOlderThanFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockLoginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attempt)
	}
	stored := *attempt
	stored.ID = uuid.NewString()
	stored.AttemptedAt = time.Now()
	return &stored, nil
}

func (m *MockLoginAttemptRepository) List(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*models.LoginAttempt{}, nil
}

func (m *MockLoginAttemptRepository) Stats(ctx context.Context, since time.Time) (*models.LoginAttemptStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, since)
	}
	return &models.LoginAttemptStats{}, nil
}

func (m *MockLoginAttemptRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockLoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteOlderThanFunc != nil {
		return m.DeleteOlderThanFunc(ctx, cutoff)
	}
	return 0, nil
}

// memoryLoginAttempts is an in-memory LoginAttemptRepository with a settable clock.
type memoryLoginAttempts struct {
	mu       sync.Mutex
	attempts []*models.LoginAttempt
	now      func() time.Time
}

func newMemoryLoginAttempts(now func() time.Time) *memoryLoginAttempts {
	return &memoryLoginAttempts{now: now}
}

func (m *memoryLoginAttempts) Create(_ context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *attempt
	stored.ID = uuid.NewString()
	if stored.AttemptedAt.IsZero() {
		stored.AttemptedAt = m.now()
	}
	m.attempts = append(m.attempts, &stored)
	return &stored, nil
}

func (m *memoryLoginAttempts) List(_ context.Context, limit int) ([]*models.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*models.LoginAttempt(nil), m.attempts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptedAt.After(out[j].AttemptedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryLoginAttempts) Stats(_ context.Context, since time.Time) (*models.LoginAttemptStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.LoginAttemptStats{}
	for _, a := range m.attempts {
		stats.Total++
		if a.Success {
			stats.Successful++
		}
		if !a.AttemptedAt.Before(since) {
			stats.Recent++
		}
	}
	return stats, nil
}

func (m *memoryLoginAttempts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.attempts {
		if a.ID == id {
			m.attempts = append(m.attempts[:i], m.attempts[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryLoginAttempts) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.attempts[:0]
	var deleted int64
	for _, a := range m.attempts {
		if a.AttemptedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept
	return deleted, nil
}

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	mu            sync.Mutex
	contact       map[string]int
	attempts      int
	writeFailures int
	purged        int64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{contact: map[string]int{}}
}

func (f *fakeMetrics) RecordContactSubmission(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contact[result]++
}

func (f *fakeMetrics) RecordLoginAttempt(bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
}

func (f *fakeMetrics) RecordLoginAttemptWriteFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeFailures++
}

func (f *fakeMetrics) RecordPurge(deleted int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged += deleted
}

func (f *fakeMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
