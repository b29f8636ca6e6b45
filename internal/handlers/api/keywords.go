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

// KeywordHandler handles keyword target CRUD via JSON API.
type KeywordHandler struct {
	db *db.DB
}

// NewKeywordHandler creates a new keyword target handler.
func NewKeywordHandler(database *db.DB) *KeywordHandler {
	return &KeywordHandler{db: database}
}

// Create registers a new keyword target for the caller's project.
func (h *KeywordHandler) Create(c fiber.Ctx) error {
	project := middleware.ProjectFromCtx(c)

	var body struct {
		Query  string `json:"query"`
		Locale string `json:"locale"`
		Device string `json:"device"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	body.Query = validation.NormalizeQuery(body.Query)
	if !validation.ValidateQuery(body.Query) {
		return jsonError(c, fiber.StatusBadRequest, "query is required and must be at most 200 characters")
	}
	if !validation.ValidateLocale(body.Locale) {
		return jsonError(c, fiber.StatusBadRequest, "locale must be a tag such as en or en-US")
	}
	if !validation.ValidateDevice(body.Device) {
		return jsonError(c, fiber.StatusBadRequest, "device must be desktop or mobile")
	}

	target := &models.KeywordTarget{
		ProjectID: project.ID,
		Query:     body.Query,
		Locale:    body.Locale,
		Device:    body.Device,
	}
	if err := h.db.CreateKeywordTarget(c.Context(), target); err != nil {
		if errors.Is(err, db.ErrDuplicateKeywordTarget) {
			return jsonError(c, fiber.StatusConflict, "keyword target already exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to create keyword target")
	}

	return jsonCreated(c, target)
}

// Get returns a single keyword target. Targets belonging to other projects
// are indistinguishable from missing ones.
func (h *KeywordHandler) Get(c fiber.Ctx) error {
	project := middleware.ProjectFromCtx(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid keyword target id")
	}

	target, err := h.db.GetKeywordTarget(c.Context(), project.ID, id)
	if err != nil {
		if errors.Is(err, db.ErrKeywordTargetNotFound) {
			return jsonError(c, fiber.StatusNotFound, "keyword target not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch keyword target")
	}

	return jsonSuccess(c, target)
}

// List returns the project's keyword targets as a cursor-paginated page in
// (createdAt, id) ascending order.
func (h *KeywordHandler) List(c fiber.Ctx) error {
	project := middleware.ProjectFromCtx(c)

	limit, err := validation.IntParam(c.Query("limit"), "limit", 25, 1, 100)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	var after *time.Time
	var afterID *uuid.UUID
	if token := c.Query("cursor"); token != "" {
		cur, err := cursor.Decode(token)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid cursor")
		}
		ts, err := time.Parse(time.RFC3339Nano, cur.SortValue)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid cursor")
		}
		after = &ts
		afterID = &cur.ID
	}

	targets, err := h.db.ListKeywordTargets(c.Context(), project.ID, after, afterID, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to list keyword targets")
	}

	page := pagination{}
	if len(targets) > limit {
		targets = targets[:limit]
		last := targets[len(targets)-1]
		page.HasMore = true
		page.NextCursor = cursor.Encode(last.CreatedAt.UTC().Format(time.RFC3339Nano), last.ID)
	}
	if targets == nil {
		targets = []models.KeywordTarget{}
	}
	return jsonPage(c, targets, page)
}
