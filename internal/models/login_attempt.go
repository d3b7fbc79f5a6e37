package models

import "time"

// LoginAttempt is one recorded admin sign-in attempt. Rows are append-only
// until deleted individually or purged by age.
type LoginAttempt struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	Success      bool      `json:"success" db:"success"`
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	AttemptedAt  time.Time `json:"attempted_at" db:"attempted_at"`
}

// LoginAttemptStats summarizes the login_attempts table.
// Failed is always Total - Successful.
type LoginAttemptStats struct {
	Total      int64 `json:"total"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	Recent     int64 `json:"recent"`
}

// PurgeResult reports a retention purge.
type PurgeResult struct {
	DeletedCount int64     `json:"deletedCount"`
	CutoffDate   time.Time `json:"cutoffDate"`
}

// LoginAttemptStatus filters attempts by outcome.
type LoginAttemptStatus string

const (
	LoginAttemptStatusAll     LoginAttemptStatus = "all"
	LoginAttemptStatusSuccess LoginAttemptStatus = "success"
	LoginAttemptStatusFailed  LoginAttemptStatus = "failed"
)
