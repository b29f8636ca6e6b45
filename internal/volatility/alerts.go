package volatility

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"serpwatch/internal/models"
)

// AlertParams control a compute-on-read alert scan over one project.
type AlertParams struct {
	WindowDays             int
	SpikeThreshold         float64
	ConcentrationThreshold float64
	Limit                  int
}

// Alerts scans every keyword target in a project and emits regime-transition,
// spike, and concentration alerts. Nothing is persisted: the same snapshots
// and parameters always produce the same alerts in the same order
// (triggered-at descending, query ascending, type ascending). The returned
// total is the pre-cap alert count.
func (e *Engine) Alerts(projectID uuid.UUID, keywords []KeywordData, p AlertParams, now time.Time) ([]models.Alert, int) {
	var alerts []models.Alert
	var latest time.Time

	for i := range keywords {
		kd := &keywords[i]
		windowed := Window(kd.Snapshots, p.WindowDays, now)
		scores := ScorePairs(Pairs(windowed), e.weights)
		targetID := kd.Target.ID

		for j, ps := range scores {
			if ps.To.CapturedAt.After(latest) {
				latest = ps.To.CapturedAt
			}
			if j > 0 {
				prev := scores[j-1]
				fromRegime := RegimeFor(prev.Score)
				toRegime := RegimeFor(ps.Score)
				if fromRegime != toRegime {
					alerts = append(alerts, models.Alert{
						Type:            models.AlertTypeRegimeTransition,
						TriggeredAt:     ps.To.CapturedAt,
						KeywordTargetID: &targetID,
						Query:           kd.Target.Query,
						RegimeTransition: &models.RegimeTransitionAlert{
							FromRegime: fromRegime,
							ToRegime:   toRegime,
							FromScore:  prev.Score,
							ToScore:    ps.Score,
						},
					})
				}
			}
			if ps.Score > p.SpikeThreshold {
				alerts = append(alerts, models.Alert{
					Type:            models.AlertTypeSpike,
					TriggeredAt:     ps.To.CapturedAt,
					KeywordTargetID: &targetID,
					Query:           kd.Target.Query,
					Spike: &models.SpikeAlert{
						FromSnapshotID:      ps.From.ID,
						ToSnapshotID:        ps.To.ID,
						PairVolatilityScore: ps.Score,
						Threshold:           p.SpikeThreshold,
						Margin:              ps.Score - p.SpikeThreshold,
					},
				})
			}
		}
	}

	summary := e.ProjectSummary(projectID, keywords, p.WindowDays, now)
	if summary.VolatilityConcentrationRatio != nil && *summary.VolatilityConcentrationRatio > p.ConcentrationThreshold {
		alerts = append(alerts, models.Alert{
			Type:        models.AlertTypeConcentrationRisk,
			TriggeredAt: latest,
			ConcentrationRisk: &models.ConcentrationRiskAlert{
				ConcentrationRatio: *summary.VolatilityConcentrationRatio,
				Threshold:          p.ConcentrationThreshold,
				TopKeywords:        summary.Top3RiskKeywords,
			},
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if !a.TriggeredAt.Equal(b.TriggeredAt) {
			return a.TriggeredAt.After(b.TriggeredAt)
		}
		if a.Query != b.Query {
			return a.Query < b.Query
		}
		return a.Type < b.Type
	})

	total := len(alerts)
	if p.Limit > 0 && len(alerts) > p.Limit {
		alerts = alerts[:p.Limit]
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return alerts, total
}
