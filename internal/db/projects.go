package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"serpwatch/internal/models"
)

// projectColumns is the standard column list for project queries.
const projectColumns = `id, name, slug, api_key, notify_email, created_at`

// scanProject scans a row into a Project struct.
func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.APIKey,
		&p.NotifyEmail,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectByAPIKey resolves the tenant for an incoming request.
func (d *DB) GetProjectByAPIKey(ctx context.Context, apiKey string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE api_key = $1`
	return scanProject(d.Pool.QueryRow(ctx, query, apiKey))
}

// GetProjectBySlug fetches a project by its slug.
func (d *DB) GetProjectBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE slug = $1`
	return scanProject(d.Pool.QueryRow(ctx, query, slug))
}

// ListProjectsWithNotifyEmail returns projects that have opted into alert
// digest notifications.
func (d *DB) ListProjectsWithNotifyEmail(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE notify_email IS NOT NULL ORDER BY created_at, id`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.APIKey, &p.NotifyEmail, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
