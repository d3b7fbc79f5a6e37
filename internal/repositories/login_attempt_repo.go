package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/portfolio/internal/database"
	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoginAttemptRepository handles database operations for login attempts
type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewLoginAttemptRepository(db *database.DB) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: db.Pool}
}

const loginAttemptColumns = `id, email, ip_address, user_agent, success, error_message, attempted_at`

func scanLoginAttemptRow(scanner rowScanner) (*models.LoginAttempt, error) {
	var attempt models.LoginAttempt
	err := scanner.Scan(
		&attempt.ID, &attempt.Email, &attempt.IPAddress, &attempt.UserAgent,
		&attempt.Success, &attempt.ErrorMessage, &attempt.AttemptedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &attempt, nil
}

func scanLoginAttemptRows(rows pgx.Rows) ([]*models.LoginAttempt, error) {
	defer rows.Close()

	attempts := make([]*models.LoginAttempt, 0)
	for rows.Next() {
		attempt, err := scanLoginAttemptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan login attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return attempts, nil
}

// Create inserts an attempt; the database assigns id and attempted_at.
func (r *LoginAttemptRepository) Create(ctx context.Context, attempt *models.LoginAttempt) (*models.LoginAttempt, error) {
	query := `
		INSERT INTO login_attempts (email, ip_address, user_agent, success, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + loginAttemptColumns

	return scanLoginAttemptRow(r.pool.QueryRow(ctx, query,
		attempt.Email,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.Success,
		attempt.ErrorMessage,
	))
}

// List returns the newest attempts first.
func (r *LoginAttemptRepository) List(ctx context.Context, limit int) ([]*models.LoginAttempt, error) {
	query := `SELECT ` + loginAttemptColumns + `
		FROM login_attempts
		ORDER BY attempted_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanLoginAttemptRows(rows)
}

// Stats counts all, successful and recent attempts in one snapshot.
func (r *LoginAttemptRepository) Stats(ctx context.Context, since time.Time) (*models.LoginAttemptStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE success),
			COUNT(*) FILTER (WHERE attempted_at >= $1)
		FROM login_attempts`

	var stats models.LoginAttemptStats
	if err := r.pool.QueryRow(ctx, query, since).Scan(&stats.Total, &stats.Successful, &stats.Recent); err != nil {
		return nil, database.MapPostgresError(err)
	}
	stats.Failed = stats.Total - stats.Successful
	return &stats, nil
}

// Delete removes one attempt. Deleting a missing id is not an error.
func (r *LoginAttemptRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE id = $1`, id)
	return database.MapPostgresError(err)
}

// DeleteOlderThan removes attempts strictly older than cutoff.
func (r *LoginAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE attempted_at < $1`, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
