package services

import (
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
)

// LoginAttemptPageSize is the fixed page size of the admin attempt listing.
const LoginAttemptPageSize = 20

// LoginAttemptFilter narrows an already-fetched attempt list.
type LoginAttemptFilter struct {
	Query  string
	Status models.LoginAttemptStatus
	Page   int
}

// LoginAttemptPage is one page of filtered attempts.
type LoginAttemptPage struct {
	Attempts   []*models.LoginAttempt `json:"attempts"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
}

// FilterLoginAttempts applies a case-insensitive substring search over
// email, IP, user agent and error message, then the status filter, then
// pagination. The page is clamped into range. Input order is preserved.
func FilterLoginAttempts(attempts []*models.LoginAttempt, f LoginAttemptFilter) LoginAttemptPage {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	matched := make([]*models.LoginAttempt, 0, len(attempts))
	for _, a := range attempts {
		if !matchesStatus(a, f.Status) {
			continue
		}
		if query != "" && !matchesQuery(a, query) {
			continue
		}
		matched = append(matched, a)
	}

	total := len(matched)
	totalPages := (total + LoginAttemptPageSize - 1) / LoginAttemptPageSize

	page := f.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	start := (page - 1) * LoginAttemptPageSize
	end := start + LoginAttemptPageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return LoginAttemptPage{
		Attempts:   matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   LoginAttemptPageSize,
		TotalPages: totalPages,
	}
}

func matchesStatus(a *models.LoginAttempt, status models.LoginAttemptStatus) bool {
	switch status {
	case models.LoginAttemptStatusSuccess:
		return a.Success
	case models.LoginAttemptStatusFailed:
		return !a.Success
	default:
		return true
	}
}

func matchesQuery(a *models.LoginAttempt, query string) bool {
	fields := []string{a.Email, a.IPAddress, a.UserAgent}
	if a.ErrorMessage != nil {
		fields = append(fields, *a.ErrorMessage)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
