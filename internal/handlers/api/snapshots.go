package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"serpwatch/internal/cursor"
	"serpwatch/internal/db"
	"serpwatch/internal/middleware"
	"serpwatch/internal/models"
	"serpwatch/internal/validation"
)

// SnapshotHandler handles SERP snapshot ingest and history listing.
type SnapshotHandler struct {
	db *db.DB
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(database *db.DB) *SnapshotHandler {
	return &SnapshotHandler{db: database}
}

// loadTarget resolves the :id path parameter to a keyword target within the
// caller's project. Cross-tenant ids and missing ids produce the same 404.
func loadTarget(c fiber.Ctx, database *db.DB) (*models.KeywordTarget, error) {
	project := middleware.ProjectFromCtx(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, jsonError(c, fiber.StatusBadRequest, "invalid keyword target id")
	}

	target, err := database.GetKeywordTarget(c.Context(), project.ID, id)
	if err != nil {
		if errors.Is(err, db.ErrKeywordTargetNotFound) {
			return nil, jsonError(c, fiber.StatusNotFound, "keyword target not found")
		}
		return nil, jsonError(c, fiber.StatusInternalServerError, "failed to fetch keyword target")
	}
	return target, nil
}

// Ingest appends a snapshot to a keyword target's history. Replaying an
// identical (keywordTargetId, capturedAt) pair returns the existing record
// with a 200 instead of creating a duplicate.
func (h *SnapshotHandler) Ingest(c fiber.Ctx) error {
	target, err := loadTarget(c, h.db)
	if target == nil {
		return err
	}

	var body struct {
		CapturedAt string              `json:"capturedAt"`
		Results    []models.SerpResult `json:"results"`
		AIOverview string              `json:"aiOverview"`
		Features   []string            `json:"features"`
		RawPayload json.RawMessage     `json:"rawPayload"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	capturedAt, err := validation.ParseCapturedAt(body.CapturedAt)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.AIOverview == "" {
		body.AIOverview = models.AIOverviewAbsent
	}
	if !validation.ValidateAIOverview(body.AIOverview) {
		return jsonError(c, fiber.StatusBadRequest, "aiOverview must be absent or present")
	}
	if err := validation.ValidateResults(body.Results); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	if body.Features == nil {
		body.Features = []string{}
	}
	if body.Results == nil {
		body.Results = []models.SerpResult{}
	}

	snap := &models.SerpSnapshot{
		KeywordTargetID: target.ID,
		CapturedAt:      capturedAt,
		Results:         body.Results,
		AIOverview:      body.AIOverview,
		Features:        body.Features,
		RawPayload:      body.RawPayload,
	}
	created, err := h.db.InsertSnapshot(c.Context(), snap)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to store snapshot")
	}

	// Raw payload is write-only on this path.
	snap.RawPayload = nil
	if created {
		return jsonCreated(c, snap)
	}
	return jsonSuccess(c, snap)
}

// History returns a target's snapshots newest-first as a cursor-paginated
// page. Raw payloads are included only with includeRaw=true.
func (h *SnapshotHandler) History(c fiber.Ctx) error {
	target, err := loadTarget(c, h.db)
	if target == nil {
		return err
	}

	limit, err := validation.IntParam(c.Query("limit"), "limit", 25, 1, 100)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	includeRaw := c.Query("includeRaw") == "true"

	var before *time.Time
	var beforeID *uuid.UUID
	if token := c.Query("cursor"); token != "" {
		cur, err := cursor.Decode(token)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid cursor")
		}
		ts, err := time.Parse(time.RFC3339Nano, cur.SortValue)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid cursor")
		}
		before = &ts
		beforeID = &cur.ID
	}

	snaps, err := h.db.ListSnapshots(c.Context(), target.ID, before, beforeID, limit, includeRaw)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to list snapshots")
	}

	page := pagination{}
	if len(snaps) > limit {
		snaps = snaps[:limit]
		last := snaps[len(snaps)-1]
		page.HasMore = true
		page.NextCursor = cursor.Encode(last.CapturedAt.UTC().Format(time.RFC3339Nano), last.ID)
	}
	if snaps == nil {
		snaps = []models.SerpSnapshot{}
	}
	return jsonPage(c, snaps, page)
}
