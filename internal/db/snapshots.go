package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"serpwatch/internal/models"
)

// snapshotColumns is the standard column list for snapshot queries. The raw
// payload is fetched separately, only when a caller asks for it.
const snapshotColumns = `id, keyword_target_id, captured_at, results, ai_overview, features, created_at`

func scanSnapshot(row pgx.Row) (*models.SerpSnapshot, error) {
	var s models.SerpSnapshot
	err := row.Scan(
		&s.ID,
		&s.KeywordTargetID,
		&s.CapturedAt,
		&s.Results,
		&s.AIOverview,
		&s.Features,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSnapshots(rows pgx.Rows) ([]models.SerpSnapshot, error) {
	defer rows.Close()

	var snaps []models.SerpSnapshot
	for rows.Next() {
		var s models.SerpSnapshot
		if err := rows.Scan(
			&s.ID,
			&s.KeywordTargetID,
			&s.CapturedAt,
			&s.Results,
			&s.AIOverview,
			&s.Features,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// InsertSnapshot appends a snapshot to a keyword target's history. Replaying
// an identical (keyword_target_id, captured_at) pair is idempotent: the
// existing row is returned and the bool result is false.
func (d *DB) InsertSnapshot(ctx context.Context, s *models.SerpSnapshot) (bool, error) {
	query := `
		INSERT INTO serp_snapshots (keyword_target_id, captured_at, results, ai_overview, features, raw_payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (keyword_target_id, captured_at) DO NOTHING
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		s.KeywordTargetID,
		s.CapturedAt,
		s.Results,
		s.AIOverview,
		s.Features,
		s.RawPayload,
	).Scan(&s.ID, &s.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := d.getSnapshotByCapture(ctx, s.KeywordTargetID, s.CapturedAt)
		if getErr != nil {
			return false, getErr
		}
		*s = *existing
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) getSnapshotByCapture(ctx context.Context, targetID uuid.UUID, capturedAt time.Time) (*models.SerpSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM serp_snapshots WHERE keyword_target_id = $1 AND captured_at = $2`
	return scanSnapshot(d.Pool.QueryRow(ctx, query, targetID, capturedAt))
}

// ListSnapshots returns a target's history ordered by (captured_at, id)
// descending, starting after the cursor position when one is supplied.
// Returns up to limit+1 rows so the caller can detect a further page. Raw
// payloads are included only when includeRaw is set.
func (d *DB) ListSnapshots(ctx context.Context, targetID uuid.UUID, before *time.Time, beforeID *uuid.UUID, limit int, includeRaw bool) ([]models.SerpSnapshot, error) {
	cols := snapshotColumns
	if includeRaw {
		cols += `, raw_payload`
	}

	var rows pgx.Rows
	var err error
	if before != nil && beforeID != nil {
		query := `
			SELECT ` + cols + ` FROM serp_snapshots
			WHERE keyword_target_id = $1 AND (captured_at, id) < ($2, $3)
			ORDER BY captured_at DESC, id DESC
			LIMIT $4
		`
		rows, err = d.Pool.Query(ctx, query, targetID, *before, *beforeID, limit+1)
	} else {
		query := `
			SELECT ` + cols + ` FROM serp_snapshots
			WHERE keyword_target_id = $1
			ORDER BY captured_at DESC, id DESC
			LIMIT $2
		`
		rows, err = d.Pool.Query(ctx, query, targetID, limit+1)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []models.SerpSnapshot
	for rows.Next() {
		var s models.SerpSnapshot
		dest := []any{&s.ID, &s.KeywordTargetID, &s.CapturedAt, &s.Results, &s.AIOverview, &s.Features, &s.CreatedAt}
		if includeRaw {
			dest = append(dest, &s.RawPayload)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// GetSnapshotsForTarget returns a target's full history ascending by capture
// time, the shape the volatility engine consumes.
func (d *DB) GetSnapshotsForTarget(ctx context.Context, targetID uuid.UUID) ([]models.SerpSnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + ` FROM serp_snapshots
		WHERE keyword_target_id = $1
		ORDER BY captured_at, id
	`
	rows, err := d.Pool.Query(ctx, query, targetID)
	if err != nil {
		return nil, err
	}
	return scanSnapshots(rows)
}

// GetSnapshotsForProject returns every snapshot of every target in a
// project, grouped by target id, for project-wide aggregations.
func (d *DB) GetSnapshotsForProject(ctx context.Context, projectID uuid.UUID) (map[uuid.UUID][]models.SerpSnapshot, error) {
	query := `
		SELECT s.id, s.keyword_target_id, s.captured_at, s.results, s.ai_overview, s.features, s.created_at
		FROM serp_snapshots s
		JOIN keyword_targets kt ON kt.id = s.keyword_target_id
		WHERE kt.project_id = $1
		ORDER BY s.keyword_target_id, s.captured_at, s.id
	`
	rows, err := d.Pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[uuid.UUID][]models.SerpSnapshot)
	for _, s := range snaps {
		grouped[s.KeywordTargetID] = append(grouped[s.KeywordTargetID], s)
	}
	return grouped, nil
}

// CountSnapshotsByProject returns snapshot totals per project slug, read by
// the metrics collector at scrape time.
func (d *DB) CountSnapshotsByProject(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT p.slug, COUNT(s.id)
		FROM projects p
		LEFT JOIN keyword_targets kt ON kt.project_id = p.id
		LEFT JOIN serp_snapshots s ON s.keyword_target_id = kt.id
		GROUP BY p.slug
	`
	return d.countBySlug(ctx, query)
}

// CountKeywordTargetsByProject returns keyword-target totals per project slug.
func (d *DB) CountKeywordTargetsByProject(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT p.slug, COUNT(kt.id)
		FROM projects p
		LEFT JOIN keyword_targets kt ON kt.project_id = p.id
		GROUP BY p.slug
	`
	return d.countBySlug(ctx, query)
}

func (d *DB) countBySlug(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var slug string
		var count int64
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, err
		}
		counts[slug] = count
	}
	return counts, rows.Err()
}
