package volatility

import (
	"sort"
	"time"

	"serpwatch/internal/models"
)

// Spikes ranks the windowed pairs by score descending and returns the top
// topN as annotated transitions. Ties keep chronological input order
// (stable sort), so repeated reads over the same snapshots produce
// identical output.
func (e *Engine) Spikes(target *models.KeywordTarget, snaps []models.SerpSnapshot, windowDays, topN int, now time.Time) models.SpikeReport {
	windowed := Window(snaps, windowDays, now)
	scores := ScorePairs(Pairs(windowed), e.weights)

	report := models.SpikeReport{
		KeywordTargetID: target.ID,
		SampleSize:      len(scores),
		TotalPairs:      len(scores),
		Spikes:          []models.VolatilitySpike{},
		ComputedAt:      now,
	}
	if len(scores) == 0 {
		return report
	}

	ranked := make([]PairScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for _, ps := range ranked {
		report.Spikes = append(report.Spikes, models.VolatilitySpike{
			FromSnapshotID:      ps.From.ID,
			ToSnapshotID:        ps.To.ID,
			FromCapturedAt:      ps.From.CapturedAt,
			ToCapturedAt:        ps.To.CapturedAt,
			PairVolatilityScore: ps.Score,
			AverageRankShift:    ps.AverageRankShift,
			MaxRankShift:        ps.MaxRankShift,
			FeatureChanges:      ps.FeatureChanges,
			AIFlipped:           ps.AIFlipped,
		})
	}
	return report
}
