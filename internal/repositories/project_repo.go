package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/portfolio/internal/database"
	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// ProjectRepository persists portfolio projects.
type ProjectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, title, slug, short_description, full_description, tech_stack,
	github_url, live_demo_url, image_url, status, visibility, featured, created_at, updated_at`

func scanProjectRow(scanner rowScanner) (*models.Project, error) {
	var p models.Project
	var status, visibility string

	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.ShortDescription, &p.FullDescription, pq.Array(&p.TechStack),
		&p.GitHubURL, &p.LiveDemoURL, &p.ImageURL, &status, &visibility, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	p.Status = models.ProjectStatus(status)
	p.Visibility = models.ProjectVisibility(visibility)
	if p.TechStack == nil {
		p.TechStack = []string{}
	}
	return &p, nil
}

func scanProjectRows(rows pgx.Rows) ([]*models.Project, error) {
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) query(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanProjectRows(rows)
}

// List returns every project, newest first.
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return total, nil
}

// ListPublic returns Public projects, featured first, then newest.
func (r *ProjectRepository) ListPublic(ctx context.Context) ([]*models.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE visibility = 'Public'
		ORDER BY featured DESC, created_at DESC`)
}

// ListRecentlyUpdated returns the most recently edited projects.
func (r *ProjectRepository) ListRecentlyUpdated(ctx context.Context, limit int) ([]*models.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM projects
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return scanProjectRow(r.db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return scanProjectRow(r.db.Pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE slug = $1`, slug))
}

// SlugExists reports whether slug is taken by a project other than excludeID.
func (r *ProjectRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM projects WHERE slug = $1 AND ($2 = '' OR id::text <> $2)
	)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (title, slug, short_description, full_description, tech_stack,
			github_url, live_demo_url, image_url, status, visibility, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + projectColumns

	return scanProjectRow(r.db.Pool.QueryRow(ctx, query,
		p.Title, p.Slug, p.ShortDescription, p.FullDescription, pq.Array(p.TechStack),
		p.GitHubURL, p.LiveDemoURL, p.ImageURL, string(p.Status), string(p.Visibility), p.Featured,
	))
}

// Update overwrites the editable fields of project id.
func (r *ProjectRepository) Update(ctx context.Context, id string, p *models.Project) (*models.Project, error) {
	query := `
		UPDATE projects SET
			title = $2, slug = $3, short_description = $4, full_description = $5, tech_stack = $6,
			github_url = $7, live_demo_url = $8, image_url = $9, status = $10, visibility = $11,
			featured = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	return scanProjectRow(r.db.Pool.QueryRow(ctx, query, id,
		p.Title, p.Slug, p.ShortDescription, p.FullDescription, pq.Array(p.TechStack),
		p.GitHubURL, p.LiveDemoURL, p.ImageURL, string(p.Status), string(p.Visibility), p.Featured,
	))
}

// SetImageURL replaces the thumbnail reference; nil clears it.
func (r *ProjectRepository) SetImageURL(ctx context.Context, id string, imageURL *string) (*models.Project, error) {
	return scanProjectRow(r.db.Pool.QueryRow(ctx, `
		UPDATE projects SET image_url = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectColumns, id, imageURL))
}

// ToggleVisibility flips Public and Hidden in a single statement. Drafts are
// not matched, so a Draft or missing id both yield models.ErrNotFound.
func (r *ProjectRepository) ToggleVisibility(ctx context.Context, id string) (*models.Project, error) {
	return scanProjectRow(r.db.Pool.QueryRow(ctx, `
		UPDATE projects SET
			visibility = CASE visibility WHEN 'Public' THEN 'Hidden' ELSE 'Public' END,
			updated_at = NOW()
		WHERE id = $1 AND visibility IN ('Public', 'Hidden')
		RETURNING `+projectColumns, id))
}

// Delete removes a project and returns the deleted row.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (*models.Project, error) {
	return scanProjectRow(r.db.Pool.QueryRow(ctx,
		`DELETE FROM projects WHERE id = $1 RETURNING `+projectColumns, id))
}

// BulkDelete deletes every id or none of them.
func (r *ProjectRepository) BulkDelete(ctx context.Context, ids []string) ([]*models.Project, error) {
	deleted := make([]*models.Project, 0, len(ids))

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, id := range ids {
			p, err := scanProjectRow(tx.QueryRow(ctx,
				`DELETE FROM projects WHERE id = $1 RETURNING `+projectColumns, id))
			if err != nil {
				return fmt.Errorf("project %s: %w", id, err)
			}
			deleted = append(deleted, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// BulkSetVisibility sets visibility on every id or none of them.
func (r *ProjectRepository) BulkSetVisibility(ctx context.Context, ids []string, visibility models.ProjectVisibility) error {
	return r.bulkExec(ctx, ids,
		`UPDATE projects SET visibility = $2, updated_at = NOW() WHERE id = $1`, string(visibility))
}

// BulkSetFeatured sets the featured flag on every id or none of them.
func (r *ProjectRepository) BulkSetFeatured(ctx context.Context, ids []string, featured bool) error {
	return r.bulkExec(ctx, ids,
		`UPDATE projects SET featured = $2, updated_at = NOW() WHERE id = $1`, featured)
}

func (r *ProjectRepository) bulkExec(ctx context.Context, ids []string, stmt string, value any) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, id := range ids {
			tag, err := tx.Exec(ctx, stmt, id, value)
			if err != nil {
				return fmt.Errorf("project %s: %w", id, database.MapPostgresError(err))
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("project %s: %w", id, models.ErrNotFound)
			}
		}
		return nil
	})
}

// Counts returns totals per visibility plus the featured count.
func (r *ProjectRepository) Counts(ctx context.Context) (*models.ProjectCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE visibility = 'Public'),
			COUNT(*) FILTER (WHERE visibility = 'Hidden'),
			COUNT(*) FILTER (WHERE visibility = 'Draft'),
			COUNT(*) FILTER (WHERE featured)
		FROM projects`

	var c models.ProjectCounts
	err := r.db.Pool.QueryRow(ctx, query).Scan(&c.Total, &c.Public, &c.Hidden, &c.Draft, &c.Featured)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}
