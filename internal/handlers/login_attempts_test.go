package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/BradenHooton/portfolio/internal/services"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAttempt_UsesRequestIdentity(t *testing.T) {
	var got services.LoginAttemptInput
	svc := &MockLoginAttemptService{
		LogFunc: func(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error) {
			got = in
			return &models.LoginAttempt{}, nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	req := NewTestRequest(t, http.MethodPost, "/log-login-attempt", LogAttemptRequest{
		Email:        "owner@example.com",
		Success:      false,
		ErrorMessage: "Invalid login credentials",
	})
	req.Header.Set("X-Real-IP", "198.51.100.4")
	req.Header.Set("User-Agent", "curl/8.0")
	w := httptest.NewRecorder()
	handler.LogAttempt(w, req)

	var resp map[string]bool
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp["success"])
	assert.Equal(t, "owner@example.com", got.Email)
	assert.False(t, got.Success)
	assert.Equal(t, "Invalid login credentials", got.ErrorMessage)
	assert.Equal(t, "198.51.100.4", got.Identity.IPAddress)
	assert.Equal(t, "curl/8.0", got.Identity.UserAgent)
}

func TestLogAttempt_UnknownIdentity(t *testing.T) {
	var got services.LoginAttemptInput
	svc := &MockLoginAttemptService{
		LogFunc: func(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error) {
			got = in
			return &models.LoginAttempt{}, nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	req := NewTestRequest(t, http.MethodPost, "/log-login-attempt", LogAttemptRequest{Email: "x@example.com", Success: true})
	req.Header.Del("User-Agent")
	w := httptest.NewRecorder()
	handler.LogAttempt(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown", got.Identity.IPAddress)
	assert.Equal(t, "unknown", got.Identity.UserAgent)
}

func TestLogAttempt_StoreFailure(t *testing.T) {
	svc := &MockLoginAttemptService{
		LogFunc: func(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error) {
			return nil, errors.New("connection refused")
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	w := httptest.NewRecorder()
	handler.LogAttempt(w, NewTestRequest(t, http.MethodPost, "/log-login-attempt", LogAttemptRequest{Email: "x@example.com"}))

	AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error", "Failed to log attempt")
}

func TestLogAttempt_MalformedBody(t *testing.T) {
	called := false
	svc := &MockLoginAttemptService{
		LogFunc: func(ctx context.Context, in services.LoginAttemptInput) (*models.LoginAttempt, error) {
			called = true
			return &models.LoginAttempt{}, nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	req := httptest.NewRequest(http.MethodPost, "/log-login-attempt", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.LogAttempt(w, req)

	AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error", "Failed to log attempt")
	assert.False(t, called)
}

func TestCleanup_UsesRetentionWindow(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var gotDays int
	svc := &MockLoginAttemptService{
		PurgeOlderThanFunc: func(ctx context.Context, days int) (*models.PurgeResult, error) {
			gotDays = days
			return &models.PurgeResult{DeletedCount: 7, CutoffDate: cutoff}, nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 30)

	w := httptest.NewRecorder()
	handler.Cleanup(w, httptest.NewRequest(http.MethodGet, "/cleanup-login-attempts", nil))

	var resp struct {
		Success      bool      `json:"success"`
		DeletedCount int64     `json:"deletedCount"`
		CutoffDate   time.Time `json:"cutoffDate"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 30, gotDays)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.DeletedCount)
	assert.True(t, cutoff.Equal(resp.CutoffDate))
}

func TestCleanup_DefaultRetention(t *testing.T) {
	var gotDays int
	svc := &MockLoginAttemptService{
		PurgeOlderThanFunc: func(ctx context.Context, days int) (*models.PurgeResult, error) {
			gotDays = days
			return &models.PurgeResult{}, nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 0)

	w := httptest.NewRecorder()
	handler.Cleanup(w, httptest.NewRequest(http.MethodGet, "/cleanup-login-attempts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 90, gotDays)
}

func TestCleanup_Failure(t *testing.T) {
	svc := &MockLoginAttemptService{
		PurgeOlderThanFunc: func(ctx context.Context, days int) (*models.PurgeResult, error) {
			return nil, errors.New("timeout")
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	w := httptest.NewRecorder()
	handler.Cleanup(w, httptest.NewRequest(http.MethodGet, "/cleanup-login-attempts", nil))

	AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error", "Cleanup failed")
}

func attemptsFixture(n int) []*models.LoginAttempt {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	attempts := make([]*models.LoginAttempt, n)
	for i := range attempts {
		attempts[i] = &models.LoginAttempt{
			ID:          fmt.Sprintf("id-%d", i),
			Email:       fmt.Sprintf("user%d@example.com", i),
			IPAddress:   "203.0.113.1",
			UserAgent:   "Mozilla/5.0 (iPhone) Safari/604.1",
			Success:     i%2 == 0,
			AttemptedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return attempts
}

func TestListAttempts_FiltersAndDecorates(t *testing.T) {
	svc := &MockLoginAttemptService{
		ListFunc: func(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
			return attemptsFixture(50), nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/admin/login-attempts?status=failed&page=2", nil))

	var resp LoginAttemptListResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 25, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Attempts, 5)
	for _, a := range resp.Attempts {
		assert.False(t, a.Success)
		assert.Equal(t, "Mobile", a.Device)
		assert.Equal(t, "Safari", a.Browser)
	}
}

func TestListAttempts_InvalidStatus(t *testing.T) {
	handler := NewLoginAttemptHandler(&MockLoginAttemptService{}, nil, discardLogger(), 90)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/admin/login-attempts?status=weird", nil))

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request", "")
}

func TestDeleteAttempt(t *testing.T) {
	var buf bytes.Buffer
	audit := pkglogger.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	var gotID string
	svc := &MockLoginAttemptService{
		DeleteFunc: func(ctx context.Context, id string) error {
			gotID = id
			return nil
		},
	}
	handler := NewLoginAttemptHandler(svc, audit, discardLogger(), 90)

	req := httptest.NewRequest(http.MethodDelete, "/admin/login-attempts/abc", nil)
	req = WithURLParams(req, map[string]string{"id": "abc"})
	req = WithAdminContext(req, "u1", "owner@example.com")
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc", gotID)
	assert.Contains(t, buf.String(), "login_attempt.delete")
}

func TestDeleteAttempt_NotFound(t *testing.T) {
	svc := &MockLoginAttemptService{
		DeleteFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	req := WithURLParams(httptest.NewRequest(http.MethodDelete, "/admin/login-attempts/x", nil), map[string]string{"id": "x"})
	w := httptest.NewRecorder()
	handler.Delete(w, req)

	AssertErrorResponse(t, w, http.StatusNotFound, "not_found", "")
}

func TestPurge_Validation(t *testing.T) {
	handler := NewLoginAttemptHandler(&MockLoginAttemptService{}, nil, discardLogger(), 90)

	for _, days := range []int{0, -3, 4000} {
		w := httptest.NewRecorder()
		handler.Purge(w, NewTestRequest(t, http.MethodPost, "/admin/login-attempts/purge", PurgeRequest{Days: days}))
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%d", days)
	}
}

func TestPurge_Success(t *testing.T) {
	svc := &MockLoginAttemptService{
		PurgeOlderThanFunc: func(ctx context.Context, days int) (*models.PurgeResult, error) {
			return &models.PurgeResult{DeletedCount: int64(days)}, nil
		},
	}
	handler := NewLoginAttemptHandler(svc, nil, discardLogger(), 90)

	w := httptest.NewRecorder()
	handler.Purge(w, NewTestRequest(t, http.MethodPost, "/admin/login-attempts/purge", PurgeRequest{Days: 14}))

	var resp map[string]interface{}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, float64(14), resp["deletedCount"])
}
