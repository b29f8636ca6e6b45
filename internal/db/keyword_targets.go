package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"serpwatch/internal/models"
)

// keywordTargetColumns is the standard column list for keyword target queries.
const keywordTargetColumns = `id, project_id, query, locale, device, created_at`

// scanKeywordTarget scans a row into a KeywordTarget struct.
func scanKeywordTarget(row pgx.Row) (*models.KeywordTarget, error) {
	var kt models.KeywordTarget
	err := row.Scan(
		&kt.ID,
		&kt.ProjectID,
		&kt.Query,
		&kt.Locale,
		&kt.Device,
		&kt.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kt, nil
}

func scanKeywordTargets(rows pgx.Rows) ([]models.KeywordTarget, error) {
	defer rows.Close()

	var targets []models.KeywordTarget
	for rows.Next() {
		var kt models.KeywordTarget
		if err := rows.Scan(
			&kt.ID,
			&kt.ProjectID,
			&kt.Query,
			&kt.Locale,
			&kt.Device,
			&kt.CreatedAt,
		); err != nil {
			return nil, err
		}
		targets = append(targets, kt)
	}
	return targets, rows.Err()
}

// CreateKeywordTarget creates a new keyword target within a project.
func (d *DB) CreateKeywordTarget(ctx context.Context, kt *models.KeywordTarget) error {
	query := `
		INSERT INTO keyword_targets (project_id, query, locale, device)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		kt.ProjectID,
		kt.Query,
		kt.Locale,
		kt.Device,
	).Scan(&kt.ID, &kt.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateKeywordTarget
		}
		return err
	}
	return nil
}

// GetKeywordTarget fetches a keyword target scoped to a project. A target
// belonging to another project yields ErrKeywordTargetNotFound, so callers
// cannot distinguish other tenants' resources from missing ones.
func (d *DB) GetKeywordTarget(ctx context.Context, projectID, targetID uuid.UUID) (*models.KeywordTarget, error) {
	query := `SELECT ` + keywordTargetColumns + ` FROM keyword_targets WHERE id = $1 AND project_id = $2`
	return scanKeywordTarget(d.Pool.QueryRow(ctx, query, targetID, projectID))
}

// ListKeywordTargets returns a project's targets ordered by (created_at, id)
// ascending, starting after the given cursor position when one is supplied.
// It returns up to limit+1 rows so the caller can tell whether another page
// exists.
func (d *DB) ListKeywordTargets(ctx context.Context, projectID uuid.UUID, after *time.Time, afterID *uuid.UUID, limit int) ([]models.KeywordTarget, error) {
	var rows pgx.Rows
	var err error
	if after != nil && afterID != nil {
		query := `
			SELECT ` + keywordTargetColumns + ` FROM keyword_targets
			WHERE project_id = $1 AND (created_at, id) > ($2, $3)
			ORDER BY created_at, id
			LIMIT $4
		`
		rows, err = d.Pool.Query(ctx, query, projectID, *after, *afterID, limit+1)
	} else {
		query := `
			SELECT ` + keywordTargetColumns + ` FROM keyword_targets
			WHERE project_id = $1
			ORDER BY created_at, id
			LIMIT $2
		`
		rows, err = d.Pool.Query(ctx, query, projectID, limit+1)
	}
	if err != nil {
		return nil, err
	}
	return scanKeywordTargets(rows)
}

// ListAllKeywordTargets returns every target in a project, ordered by
// (created_at, id) ascending, for project-wide aggregations.
func (d *DB) ListAllKeywordTargets(ctx context.Context, projectID uuid.UUID) ([]models.KeywordTarget, error) {
	query := `SELECT ` + keywordTargetColumns + ` FROM keyword_targets WHERE project_id = $1 ORDER BY created_at, id`
	rows, err := d.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	return scanKeywordTargets(rows)
}
