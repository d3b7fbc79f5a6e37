package services_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/google/uuid"
)

// memoryProjects is an in-memory ProjectRepository. Calls counts every
// method invocation so tests can assert nothing was touched.
type memoryProjects struct {
	mu       sync.Mutex
	projects map[string]*models.Project
	clock    time.Time
	Calls    int
	FailNext error
}

func newMemoryProjects() *memoryProjects {
	return &memoryProjects{
		projects: make(map[string]*models.Project),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryProjects) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryProjects) enter() error {
	m.Calls++
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	return nil
}

func clone(p *models.Project) *models.Project {
	c := *p
	c.TechStack = append([]string(nil), p.TechStack...)
	return &c
}

// seed stores p directly, bypassing slug checks.
func (m *memoryProjects) seed(p models.Project) *models.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Slug == "" {
		p.Slug = models.GenerateSlug(p.Title)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.tick()
	}
	p.UpdatedAt = p.CreatedAt
	m.projects[p.ID] = clone(&p)
	return clone(&p)
}

func (m *memoryProjects) sorted(less func(a, b *models.Project) bool, keep func(*models.Project) bool) []*models.Project {
	out := make([]*models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		if keep == nil || keep(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (m *memoryProjects) List(_ context.Context, limit, offset int) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	all := m.sorted(func(a, b *models.Project) bool { return a.CreatedAt.After(b.CreatedAt) }, nil)
	if offset >= len(all) {
		return []*models.Project{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memoryProjects) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return 0, err
	}
	return int64(len(m.projects)), nil
}

func (m *memoryProjects) ListPublic(_ context.Context) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	return m.sorted(func(a, b *models.Project) bool {
		if a.Featured != b.Featured {
			return a.Featured
		}
		return a.CreatedAt.After(b.CreatedAt)
	}, (*models.Project).IsPublic), nil
}

func (m *memoryProjects) GetByID(_ context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clone(p), nil
}

func (m *memoryProjects) GetBySlug(_ context.Context, slug string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, p := range m.projects {
		if p.Slug == slug {
			return clone(p), nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memoryProjects) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return false, err
	}
	for _, p := range m.projects {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryProjects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	for _, existing := range m.projects {
		if existing.Slug == p.Slug {
			return nil, fmt.Errorf("%w: projects_slug_key", models.ErrConflict)
		}
	}
	stored := clone(p)
	stored.ID = uuid.NewString()
	stored.CreatedAt = m.tick()
	stored.UpdatedAt = stored.CreatedAt
	m.projects[stored.ID] = stored
	return clone(stored), nil
}

func (m *memoryProjects) Update(_ context.Context, id string, p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	existing, ok := m.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	stored := clone(p)
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = m.tick()
	m.projects[id] = stored
	return clone(stored), nil
}

func (m *memoryProjects) SetImageURL(_ context.Context, id string, imageURL *string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.ImageURL = imageURL
	p.UpdatedAt = m.tick()
	return clone(p), nil
}

func (m *memoryProjects) ToggleVisibility(_ context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok || p.Visibility == models.VisibilityDraft {
		return nil, models.ErrNotFound
	}
	if p.Visibility == models.VisibilityPublic {
		p.Visibility = models.VisibilityHidden
	} else {
		p.Visibility = models.VisibilityPublic
	}
	p.UpdatedAt = m.tick()
	return clone(p), nil
}

func (m *memoryProjects) Delete(_ context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(m.projects, id)
	return p, nil
}

func (m *memoryProjects) checkAll(ids []string) error {
	for _, id := range ids {
		if _, ok := m.projects[id]; !ok {
			return fmt.Errorf("project %s: %w", id, models.ErrNotFound)
		}
	}
	return nil
}

func (m *memoryProjects) BulkDelete(_ context.Context, ids []string) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	if err := m.checkAll(ids); err != nil {
		return nil, err
	}
	deleted := make([]*models.Project, 0, len(ids))
	for _, id := range ids {
		deleted = append(deleted, m.projects[id])
		delete(m.projects, id)
	}
	return deleted, nil
}

func (m *memoryProjects) BulkSetVisibility(_ context.Context, ids []string, visibility models.ProjectVisibility) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if err := m.checkAll(ids); err != nil {
		return err
	}
	for _, id := range ids {
		m.projects[id].Visibility = visibility
	}
	return nil
}

func (m *memoryProjects) BulkSetFeatured(_ context.Context, ids []string, featured bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if err := m.checkAll(ids); err != nil {
		return err
	}
	for _, id := range ids {
		m.projects[id].Featured = featured
	}
	return nil
}

// fakeImageStore keeps uploaded objects in memory.
type fakeImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	UploadErr error
	DeleteErr error
}

const fakeImageBase = "https://cdn.example.com/project-images/"

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte)}
}

func (f *fakeImageStore) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return fakeImageBase + key, nil
}

func (f *fakeImageStore) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for _, key := range keys {
		delete(f.objects, key)
	}
	return nil
}

func (f *fakeImageStore) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, fakeImageBase) {
		return "", false
	}
	return strings.TrimPrefix(url, fakeImageBase), true
}
