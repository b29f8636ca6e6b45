package volatility

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"serpwatch/internal/models"
)

// KeywordData bundles one keyword target with its snapshot history, the unit
// the project-level aggregations consume.
type KeywordData struct {
	Target    models.KeywordTarget
	Snapshots []models.SerpSnapshot
}

// ProjectSummary runs the keyword-level aggregation over every target in a
// project and reduces the results to summary statistics. Both distribution
// maps carry every tier, so their counts sum to KeywordCount even when a
// bucket is empty.
//
// The weighted score is the sample-size-weighted mean of keyword scores, so
// well-observed keywords dominate thinly-observed ones. The concentration
// ratio is the share of total volatility attributable to the three riskiest
// keywords; it is nil when total volatility is zero.
func (e *Engine) ProjectSummary(projectID uuid.UUID, keywords []KeywordData, windowDays int, now time.Time) models.ProjectRiskSummary {
	summary := models.ProjectRiskSummary{
		ProjectID:    projectID,
		KeywordCount: len(keywords),
		RegimeDistribution: map[string]int{
			models.RegimeCalm:     0,
			models.RegimeShifting: 0,
			models.RegimeUnstable: 0,
			models.RegimeChaotic:  0,
		},
		MaturityDistribution: map[string]int{
			models.MaturityPreliminary: 0,
			models.MaturityDeveloping:  0,
			models.MaturityStable:      0,
		},
		Top3RiskKeywords: []models.RiskKeyword{},
		ComputedAt:       now,
	}

	ranked := make([]models.RiskKeyword, 0, len(keywords))
	var scoreSum float64
	var weightedSum, weightTotal float64
	for i := range keywords {
		kd := &keywords[i]
		res := e.KeywordVolatility(&kd.Target, kd.Snapshots, windowDays, now)

		summary.RegimeDistribution[res.Regime]++
		summary.MaturityDistribution[res.Maturity]++
		scoreSum += res.VolatilityScore
		if res.VolatilityScore > 0 {
			summary.ActiveKeywordCount++
		}
		if res.VolatilityScore > summary.MaxVolatilityScore {
			summary.MaxVolatilityScore = res.VolatilityScore
		}
		weightedSum += res.VolatilityScore * float64(res.SampleSize)
		weightTotal += float64(res.SampleSize)

		ranked = append(ranked, models.RiskKeyword{
			KeywordTargetID: kd.Target.ID,
			Query:           kd.Target.Query,
			VolatilityScore: res.VolatilityScore,
			Regime:          res.Regime,
			Maturity:        res.Maturity,
			SampleSize:      res.SampleSize,
		})
	}

	if len(keywords) > 0 {
		summary.AverageVolatilityScore = scoreSum / float64(len(keywords))
	}
	if weightTotal > 0 {
		summary.WeightedProjectVolatilityScore = weightedSum / weightTotal
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].VolatilityScore != ranked[j].VolatilityScore {
			return ranked[i].VolatilityScore > ranked[j].VolatilityScore
		}
		return ranked[i].Query < ranked[j].Query
	})
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	var topSum float64
	for _, k := range top {
		topSum += k.VolatilityScore
	}
	summary.Top3RiskKeywords = top

	if scoreSum > 0 {
		ratio := topSum / scoreSum
		summary.VolatilityConcentrationRatio = &ratio
	}
	return summary
}

// AlertFeed lists the keywords whose current windowed score clears the
// threshold at the requested minimum maturity, sorted by score descending
// then id ascending. The handler layer paginates this with a cursor.
func (e *Engine) AlertFeed(keywords []KeywordData, windowDays int, threshold float64, minMaturity string, now time.Time) []models.AlertFeedItem {
	minRank := models.MaturityRank(minMaturity)
	items := make([]models.AlertFeedItem, 0)
	for i := range keywords {
		kd := &keywords[i]
		res := e.KeywordVolatility(&kd.Target, kd.Snapshots, windowDays, now)
		if res.VolatilityScore < threshold {
			continue
		}
		if models.MaturityRank(res.Maturity) < minRank {
			continue
		}
		items = append(items, models.AlertFeedItem{
			KeywordTargetID: kd.Target.ID,
			Query:           kd.Target.Query,
			VolatilityScore: res.VolatilityScore,
			Regime:          res.Regime,
			Maturity:        res.Maturity,
			SampleSize:      res.SampleSize,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].VolatilityScore != items[j].VolatilityScore {
			return items[i].VolatilityScore > items[j].VolatilityScore
		}
		return items[i].KeywordTargetID.String() < items[j].KeywordTargetID.String()
	})
	return items
}
