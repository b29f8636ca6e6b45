package volatility

import (
	"time"

	"serpwatch/internal/models"
)

// Maturity sample-size floors. Below developingFloor a score is still
// preliminary; at stableFloor and above it is stable.
const (
	developingFloor = 5
	stableFloor     = 20
)

// Engine computes volatility analytics with a fixed set of scoring weights.
type Engine struct {
	weights Weights
}

// New creates an engine. Invalid weights fall back to the defaults.
func New(w Weights) *Engine {
	if !w.Valid() {
		w = DefaultWeights()
	}
	return &Engine{weights: w}
}

// Weights returns the engine's scoring weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// RegimeFor classifies a score into a regime tier. Intervals are closed on
// the upper bound: (20,50] is shifting, etc. Zero is calm.
func RegimeFor(score float64) string {
	switch {
	case score <= 20:
		return models.RegimeCalm
	case score <= 50:
		return models.RegimeShifting
	case score <= 75:
		return models.RegimeUnstable
	default:
		return models.RegimeChaotic
	}
}

// MaturityFor classifies a sample size into a confidence tier.
func MaturityFor(sampleSize int) string {
	switch {
	case sampleSize < developingFloor:
		return models.MaturityPreliminary
	case sampleSize < stableFloor:
		return models.MaturityDeveloping
	default:
		return models.MaturityStable
	}
}

// KeywordVolatility reduces a keyword target's snapshots over the trailing
// window into one volatility result. With fewer than two windowed snapshots
// the result is zeroed: score 0, calm, preliminary.
func (e *Engine) KeywordVolatility(target *models.KeywordTarget, snaps []models.SerpSnapshot, windowDays int, now time.Time) models.VolatilityResult {
	windowed := Window(snaps, windowDays, now)
	scores := ScorePairs(Pairs(windowed), e.weights)

	res := models.VolatilityResult{
		KeywordTargetID: target.ID,
		WindowDays:      windowDays,
		SampleSize:      len(scores),
		Regime:          models.RegimeCalm,
		Maturity:        MaturityFor(len(scores)),
		ComputedAt:      now,
	}
	if len(scores) == 0 {
		return res
	}

	var scoreSum, rankSum, aiSum, featSum, avgShiftSum, featChangeSum float64
	for _, ps := range scores {
		scoreSum += ps.Score
		rankSum += ps.RankComponent
		aiSum += ps.AIComponent
		featSum += ps.FeatureComponent
		avgShiftSum += ps.AverageRankShift
		featChangeSum += float64(ps.FeatureChanges)
		if ps.AIFlipped {
			res.AIOverviewChurn++
		}
		if ps.MaxRankShift > res.MaxRankShift {
			res.MaxRankShift = ps.MaxRankShift
		}
	}

	n := float64(len(scores))
	res.VolatilityScore = scoreSum / n
	res.RankVolatilityComponent = rankSum / n
	res.AIOverviewComponent = aiSum / n
	res.FeatureVolatilityComponent = featSum / n
	res.AverageRankShift = avgShiftSum / n
	res.FeatureVolatility = featChangeSum / n
	res.Regime = RegimeFor(res.VolatilityScore)
	return res
}
