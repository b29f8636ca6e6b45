package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert trigger kinds
const (
	AlertTypeRegimeTransition  = "regime_transition"
	AlertTypeSpike             = "spike"
	AlertTypeConcentrationRisk = "concentration_risk"
)

// RegimeTransitionAlert fires when a keyword's regime changes between two
// consecutive snapshot pairs.
type RegimeTransitionAlert struct {
	FromRegime string  `json:"fromRegime"`
	ToRegime   string  `json:"toRegime"`
	FromScore  float64 `json:"fromScore"`
	ToScore    float64 `json:"toScore"`
}

// SpikeAlert fires when a single pair's score exceeds the spike threshold.
type SpikeAlert struct {
	FromSnapshotID      uuid.UUID `json:"fromSnapshotId"`
	ToSnapshotID        uuid.UUID `json:"toSnapshotId"`
	PairVolatilityScore float64   `json:"pairVolatilityScore"`
	Threshold           float64   `json:"threshold"`
	Margin              float64   `json:"margin"`
}

// ConcentrationRiskAlert fires when the project-level concentration ratio
// exceeds the configured threshold.
type ConcentrationRiskAlert struct {
	ConcentrationRatio float64       `json:"concentrationRatio"`
	Threshold          float64       `json:"threshold"`
	TopKeywords        []RiskKeyword `json:"topKeywords"`
}

// Alert is a tagged union over the three trigger kinds. Exactly one variant
// field is populated, matching Type.
type Alert struct {
	Type            string     `json:"type"`
	TriggeredAt     time.Time  `json:"triggeredAt"`
	KeywordTargetID *uuid.UUID `json:"keywordTargetId,omitempty"`
	Query           string     `json:"query,omitempty"`

	RegimeTransition  *RegimeTransitionAlert  `json:"regimeTransition,omitempty"`
	Spike             *SpikeAlert             `json:"spike,omitempty"`
	ConcentrationRisk *ConcentrationRiskAlert `json:"concentrationRisk,omitempty"`
}

// Validate checks that exactly the variant named by Type is populated.
func (a *Alert) Validate() error {
	switch a.Type {
	case AlertTypeRegimeTransition:
		if a.RegimeTransition == nil || a.Spike != nil || a.ConcentrationRisk != nil {
			return fmt.Errorf("alert variant mismatch for type %q", a.Type)
		}
	case AlertTypeSpike:
		if a.Spike == nil || a.RegimeTransition != nil || a.ConcentrationRisk != nil {
			return fmt.Errorf("alert variant mismatch for type %q", a.Type)
		}
	case AlertTypeConcentrationRisk:
		if a.ConcentrationRisk == nil || a.RegimeTransition != nil || a.Spike != nil {
			return fmt.Errorf("alert variant mismatch for type %q", a.Type)
		}
	default:
		return fmt.Errorf("unknown alert type %q", a.Type)
	}
	return nil
}

// AlertFeedItem is one entry of the cursor-paginated volatility alert feed:
// a keyword whose current score clears the caller's threshold.
type AlertFeedItem struct {
	KeywordTargetID uuid.UUID `json:"keywordTargetId"`
	Query           string    `json:"query"`
	VolatilityScore float64   `json:"volatilityScore"`
	Regime          string    `json:"regime"`
	Maturity        string    `json:"maturity"`
	SampleSize      int       `json:"sampleSize"`
}
