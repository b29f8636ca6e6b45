package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"serpwatch/internal/cursor"
	"serpwatch/internal/db"
	"serpwatch/internal/metrics"
	"serpwatch/internal/middleware"
	"serpwatch/internal/models"
	"serpwatch/internal/validation"
	"serpwatch/internal/volatility"
)

// VolatilityHandler serves all compute-on-read volatility endpoints. Every
// request loads the relevant snapshots and runs one aggregation pass; nothing
// is cached or persisted, so repeated reads over an unchanged snapshot set
// are identical except for computedAt.
type VolatilityHandler struct {
	db     *db.DB
	engine *volatility.Engine
}

// NewVolatilityHandler creates a new volatility handler.
func NewVolatilityHandler(database *db.DB, engine *volatility.Engine) *VolatilityHandler {
	return &VolatilityHandler{db: database, engine: engine}
}

func windowDaysParam(c fiber.Ctx) (int, error) {
	return validation.IntParam(c.Query("windowDays"), "windowDays", 0, 1, 365)
}

// Volatility returns the keyword-level volatility result for the window.
func (h *VolatilityHandler) Volatility(c fiber.Ctx) error {
	start := time.Now()
	target, err := loadTarget(c, h.db)
	if target == nil {
		return err
	}
	windowDays, err := windowDaysParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	snaps, err := h.db.GetSnapshotsForTarget(c.Context(), target.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load snapshots")
	}

	result := h.engine.KeywordVolatility(target, snaps, windowDays, time.Now().UTC())
	metrics.ObserveComputation("volatility", start)
	return jsonSuccess(c, result)
}

// Breakdown returns the per-URL rank-shift attribution for the window.
func (h *VolatilityHandler) Breakdown(c fiber.Ctx) error {
	start := time.Now()
	target, err := loadTarget(c, h.db)
	if target == nil {
		return err
	}
	windowDays, err := windowDaysParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	topN, err := validation.IntParam(c.Query("topN"), "topN", 10, 1, 50)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	snaps, err := h.db.GetSnapshotsForTarget(c.Context(), target.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load snapshots")
	}

	breakdown := h.engine.Breakdown(target, snaps, windowDays, topN, time.Now().UTC())
	metrics.ObserveComputation("breakdown", start)
	return jsonSuccess(c, breakdown)
}

// Spikes returns the most volatile pair transitions in the window.
func (h *VolatilityHandler) Spikes(c fiber.Ctx) error {
	start := time.Now()
	target, err := loadTarget(c, h.db)
	if target == nil {
		return err
	}
	windowDays, err := windowDaysParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	topN, err := validation.IntParam(c.Query("topN"), "topN", 3, 1, 10)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	snaps, err := h.db.GetSnapshotsForTarget(c.Context(), target.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load snapshots")
	}

	report := h.engine.Spikes(target, snaps, windowDays, topN, time.Now().UTC())
	metrics.ObserveComputation("spikes", start)
	return jsonSuccess(c, report)
}

// Transitions returns the feature-set transition tally for the window.
func (h *VolatilityHandler) Transitions(c fiber.Ctx) error {
	start := time.Now()
	target, err := loadTarget(c, h.db)
	if target == nil {
		return err
	}
	windowDays, err := windowDaysParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	snaps, err := h.db.GetSnapshotsForTarget(c.Context(), target.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load snapshots")
	}

	matrix := h.engine.Transitions(target, snaps, windowDays, time.Now().UTC())
	metrics.ObserveComputation("transitions", start)
	return jsonSuccess(c, matrix)
}

// loadProjectKeywords fetches every keyword target in the project along with
// its snapshot history, the input shape of the project-level aggregations.
func (h *VolatilityHandler) loadProjectKeywords(c fiber.Ctx) ([]volatility.KeywordData, error) {
	project := middleware.ProjectFromCtx(c)

	targets, err := h.db.ListAllKeywordTargets(c.Context(), project.ID)
	if err != nil {
		return nil, err
	}
	grouped, err := h.db.GetSnapshotsForProject(c.Context(), project.ID)
	if err != nil {
		return nil, err
	}

	keywords := make([]volatility.KeywordData, 0, len(targets))
	for _, t := range targets {
		keywords = append(keywords, volatility.KeywordData{
			Target:    t,
			Snapshots: grouped[t.ID],
		})
	}
	return keywords, nil
}

// Summary returns the project-level risk aggregation.
func (h *VolatilityHandler) Summary(c fiber.Ctx) error {
	start := time.Now()
	project := middleware.ProjectFromCtx(c)

	windowDays, err := windowDaysParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	keywords, err := h.loadProjectKeywords(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load project data")
	}

	summary := h.engine.ProjectSummary(project.ID, keywords, windowDays, time.Now().UTC())
	metrics.ObserveComputation("summary", start)
	return jsonSuccess(c, summary)
}

// AlertFeed returns the cursor-paginated list of keywords whose current
// score clears the threshold, sorted score descending then id ascending.
func (h *VolatilityHandler) AlertFeed(c fiber.Ctx) error {
	start := time.Now()

	windowDays, err := windowDaysParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	threshold, err := validation.FloatParam(c.Query("alertThreshold"), "alertThreshold", 50, 0, 100)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	minMaturity := c.Query("minMaturity", models.MaturityDeveloping)
	if !validation.ValidateMaturity(minMaturity) {
		return jsonError(c, fiber.StatusBadRequest, "minMaturity must be preliminary, developing, or stable")
	}
	limit, err := validation.IntParam(c.Query("limit"), "limit", 25, 1, 100)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	keywords, err := h.loadProjectKeywords(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load project data")
	}

	items := h.engine.AlertFeed(keywords, windowDays, threshold, minMaturity, time.Now().UTC())

	// The feed is recomputed per request, so the cursor re-derives the
	// caller's position from the (score, id) sort key instead of an offset.
	if token := c.Query("cursor"); token != "" {
		cur, err := cursor.Decode(token)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid cursor")
		}
		afterScore, err := strconv.ParseFloat(cur.SortValue, 64)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid cursor")
		}
		items = feedItemsAfter(items, afterScore, cur.ID)
	}

	page := pagination{}
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		page.HasMore = true
		page.NextCursor = cursor.Encode(feedSortValue(last.VolatilityScore), last.KeywordTargetID)
	}
	metrics.ObserveComputation("alert_feed", start)
	return jsonPage(c, items, page)
}

// feedSortValue renders a score so it round-trips exactly through the cursor.
func feedSortValue(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// feedItemsAfter drops every item at or before the (score, id) cursor
// position in the feed's total order (score descending, id ascending).
func feedItemsAfter(items []models.AlertFeedItem, afterScore float64, afterID uuid.UUID) []models.AlertFeedItem {
	pos := 0
	for pos < len(items) {
		it := items[pos]
		if it.VolatilityScore < afterScore ||
			(it.VolatilityScore == afterScore && it.KeywordTargetID.String() > afterID.String()) {
			break
		}
		pos++
	}
	return items[pos:]
}

// Alerts runs the compute-on-read alert scan over the caller's project.
func (h *VolatilityHandler) Alerts(c fiber.Ctx) error {
	start := time.Now()
	project := middleware.ProjectFromCtx(c)

	windowDays, err := validation.RequiredIntParam(c.Query("windowDays"), "windowDays", 1, 30)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	spikeThreshold, err := validation.FloatParam(c.Query("spikeThreshold"), "spikeThreshold", 75, 0, 100)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	concentrationThreshold, err := validation.FloatParam(c.Query("concentrationThreshold"), "concentrationThreshold", 0.8, 0, 1)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := validation.IntParam(c.Query("limit"), "limit", 50, 1, 100)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	keywords, err := h.loadProjectKeywords(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load project data")
	}

	alerts, total := h.engine.Alerts(project.ID, keywords, volatility.AlertParams{
		WindowDays:             windowDays,
		SpikeThreshold:         spikeThreshold,
		ConcentrationThreshold: concentrationThreshold,
		Limit:                  limit,
	}, time.Now().UTC())

	metrics.ObserveComputation("alerts", start)
	return jsonSuccess(c, fiber.Map{
		"alerts":      alerts,
		"alertCount":  len(alerts),
		"totalAlerts": total,
		"computedAt":  time.Now().UTC(),
	})
}
