package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/portfolio/internal/auth"
	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/BradenHooton/portfolio/internal/services"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAdminContext marks the request as coming from a signed-in admin.
func WithAdminContext(req *http.Request, userID, email string) *http.Request {
	ctx := auth.WithAdmin(req.Context(), &models.Admin{UserID: userID, Email: email})
	return req.WithContext(ctx)
}

// WithURLParams attaches chi route parameters to the request.
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks status, error message and code of an error response.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode, expectedMessage string) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedCode, resp.Code, "Error code mismatch")
	if expectedMessage != "" {
		assert.Equal(t, expectedMessage, resp.Error)
	}
}

// MockContactService implements ContactServiceInterface for testing
type MockContactService struct {
	SubmitFunc func(ctx context.Context, ip string, msg models.ContactMessage) error
}

func (m *MockContactService) Submit(ctx context.Context, ip string, msg models.ContactMessage) error {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, ip, msg)
	}
	return nil
}

// MockLoginAttemptService implements LoginAttemptServiceInterface for testing
type MockLoginAttemptService struct {
	LogFunc            func(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error)
	ListFunc           func(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
	StatsFunc          func(ctx context.Context) (*models.LoginAttemptStats, error)
	DeleteFunc         func(ctx context.Context, id string) error
	PurgeOlderThanFunc func(ctx context.Context, days int) (*models.PurgeResult, error)
}

func (m *MockLoginAttemptService) Log(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error) {
	if m.LogFunc != nil {
		return m.LogFunc(ctx, in)
	}
	return &models.LoginAttempt{Email: in.Email, Success: in.Success}, nil
}

func (m *MockLoginAttemptService) List(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*models.LoginAttempt{}, nil
}

func (m *MockLoginAttemptService) Stats(ctx context.Context) (*models.LoginAttemptStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.LoginAttemptStats{}, nil
}

func (m *MockLoginAttemptService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockLoginAttemptService) PurgeOlderThan(ctx context.Context, days int) (*models.PurgeResult, error) {
	if m.PurgeOlderThanFunc != nil {
		return m.PurgeOlderThanFunc(ctx, days)
	}
	return &models.PurgeResult{}, nil
}

// MockProjectService implements ProjectServiceInterface for testing
type MockProjectService struct {
	ListFunc             func(ctx context.Context, page, limit int) (*models.ProjectList, error)
	ListPublicFunc       func(ctx context.Context) ([]*models.Project, error)
	GetFunc              func(ctx context.Context, key string, includePrivate bool) (*models.Project, error)
	CreateFunc           func(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	UpdateFunc           func(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error)
	DeleteFunc           func(ctx context.Context, id string) error
	ToggleVisibilityFunc func(ctx context.Context, id string) (*models.Project, error)
	BulkFunc             func(ctx context.Context, action models.BulkAction, ids []string) (*models.BulkResult, error)
	UploadImageFunc      func(ctx context.Context, id string, upload services.ImageUpload) (*models.Project, error)
	RemoveImageFunc      func(ctx context.Context, id string) (*models.Project, error)
}

func (m *MockProjectService) List(ctx context.Context, page, limit int) (*models.ProjectList, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, limit)
	}
	return &models.ProjectList{Projects: []*models.Project{}}, nil
}

func (m *MockProjectService) ListPublic(ctx context.Context) ([]*models.Project, error) {
	if m.ListPublicFunc != nil {
		return m.ListPublicFunc(ctx)
	}
	return []*models.Project{}, nil
}

func (m *MockProjectService) Get(ctx context.Context, key string, includePrivate bool) (*models.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, includePrivate)
	}
	return nil, models.ErrNotFound
}

func (m *MockProjectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &models.Project{Title: in.Title}, nil
}

func (m *MockProjectService) Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return &models.Project{ID: id, Title: in.Title}, nil
}

func (m *MockProjectService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockProjectService) ToggleVisibility(ctx context.Context, id string) (*models.Project, error) {
	if m.ToggleVisibilityFunc != nil {
		return m.ToggleVisibilityFunc(ctx, id)
	}
	return &models.Project{ID: id}, nil
}

func (m *MockProjectService) Bulk(ctx context.Context, action models.BulkAction, ids []string) (*models.BulkResult, error) {
	if m.BulkFunc != nil {
		return m.BulkFunc(ctx, action, ids)
	}
	return &models.BulkResult{Action: action, Affected: len(ids)}, nil
}

func (m *MockProjectService) UploadImage(ctx context.Context, id string, upload services.ImageUpload) (*models.Project, error) {
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, id, upload)
	}
	return &models.Project{ID: id}, nil
}

func (m *MockProjectService) RemoveImage(ctx context.Context, id string) (*models.Project, error) {
	if m.RemoveImageFunc != nil {
		return m.RemoveImageFunc(ctx, id)
	}
	return &models.Project{ID: id}, nil
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, email, password string, identity models.Identity) (*models.Session, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, identity models.Identity) (*models.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, identity)
	}
	return &models.Session{AccessToken: "token", Email: email}, nil
}

// MockGitHubService implements GitHubServiceInterface for testing
type MockGitHubService struct {
	ContributionsFunc func(ctx context.Context, username string) (*models.ContributionStats, error)
}

func (m *MockGitHubService) Contributions(ctx context.Context, username string) (*models.ContributionStats, error) {
	if m.ContributionsFunc != nil {
		return m.ContributionsFunc(ctx, username)
	}
	return &models.ContributionStats{Username: username}, nil
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	DashboardFunc func(ctx context.Context) (*services.Dashboard, error)
}

func (m *MockAdminService) Dashboard(ctx context.Context) (*services.Dashboard, error) {
	if m.DashboardFunc != nil {
		return m.DashboardFunc(ctx)
	}
	return &services.Dashboard{}, nil
}
