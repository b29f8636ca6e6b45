package models

import (
	"time"

	"github.com/google/uuid"
)

// Regime tiers, calmest first.
const (
	RegimeCalm     = "calm"
	RegimeShifting = "shifting"
	RegimeUnstable = "unstable"
	RegimeChaotic  = "chaotic"
)

// Maturity tiers, least trustworthy first.
const (
	MaturityPreliminary = "preliminary"
	MaturityDeveloping  = "developing"
	MaturityStable      = "stable"
)

// MaturityRank maps a maturity tier to its position in the confidence order.
// Returns -1 for unknown values.
func MaturityRank(m string) int {
	switch m {
	case MaturityPreliminary:
		return 0
	case MaturityDeveloping:
		return 1
	case MaturityStable:
		return 2
	}
	return -1
}

// VolatilityResult is the per-keyword volatility computation for one window.
// The three components always sum to VolatilityScore.
type VolatilityResult struct {
	KeywordTargetID            uuid.UUID `json:"keywordTargetId"`
	WindowDays                 int       `json:"windowDays,omitempty"`
	SampleSize                 int       `json:"sampleSize"`
	VolatilityScore            float64   `json:"volatilityScore"`
	RankVolatilityComponent    float64   `json:"rankVolatilityComponent"`
	AIOverviewComponent        float64   `json:"aiOverviewComponent"`
	FeatureVolatilityComponent float64   `json:"featureVolatilityComponent"`
	Regime                     string    `json:"regime"`
	Maturity                   string    `json:"maturity"`
	AverageRankShift           float64   `json:"averageRankShift"`
	MaxRankShift               int       `json:"maxRankShift"`
	AIOverviewChurn            int       `json:"aiOverviewChurn"`
	FeatureVolatility          float64   `json:"featureVolatility"`
	ComputedAt                 time.Time `json:"computedAt"`
}

// URLAttribution is one URL's contribution to rank churn across a window.
type URLAttribution struct {
	URL              string    `json:"url"`
	Appearances      int       `json:"appearances"`
	TotalAbsShift    int       `json:"totalAbsShift"`
	AverageShift     float64   `json:"averageShift"`
	PairsBothPresent int       `json:"pairsBothPresent"`
	FirstSeen        time.Time `json:"firstSeen"`
	LastSeen         time.Time `json:"lastSeen"`
}

// VolatilityBreakdown is the per-URL attribution response for one window.
type VolatilityBreakdown struct {
	KeywordTargetID uuid.UUID        `json:"keywordTargetId"`
	SampleSize      int              `json:"sampleSize"`
	URLCount        int              `json:"urlCount"`
	URLs            []URLAttribution `json:"urls"`
	ComputedAt      time.Time        `json:"computedAt"`
}

// VolatilitySpike is one high-scoring snapshot pair.
type VolatilitySpike struct {
	FromSnapshotID      uuid.UUID `json:"fromSnapshotId"`
	ToSnapshotID        uuid.UUID `json:"toSnapshotId"`
	FromCapturedAt      time.Time `json:"fromCapturedAt"`
	ToCapturedAt        time.Time `json:"toCapturedAt"`
	PairVolatilityScore float64   `json:"pairVolatilityScore"`
	AverageRankShift    float64   `json:"averageRankShift"`
	MaxRankShift        int       `json:"maxRankShift"`
	FeatureChanges      int       `json:"featureChanges"`
	AIFlipped           bool      `json:"aiFlipped"`
}

// SpikeReport lists the most volatile pair transitions in a window.
type SpikeReport struct {
	KeywordTargetID uuid.UUID         `json:"keywordTargetId"`
	SampleSize      int               `json:"sampleSize"`
	TotalPairs      int               `json:"totalPairs"`
	Spikes          []VolatilitySpike `json:"spikes"`
	ComputedAt      time.Time         `json:"computedAt"`
}

// FeatureTransition tallies occurrences of one feature-set transition.
// Both feature arrays are sorted ascending.
type FeatureTransition struct {
	FromFeatureSet []string `json:"fromFeatureSet"`
	ToFeatureSet   []string `json:"toFeatureSet"`
	Count          int      `json:"count"`
}

// TransitionMatrix is the feature-transition tally for one window.
// The per-transition counts always sum to TotalTransitions == SampleSize.
type TransitionMatrix struct {
	KeywordTargetID         uuid.UUID           `json:"keywordTargetId"`
	SampleSize              int                 `json:"sampleSize"`
	TotalTransitions        int                 `json:"totalTransitions"`
	DistinctTransitionCount int                 `json:"distinctTransitionCount"`
	Transitions             []FeatureTransition `json:"transitions"`
	ComputedAt              time.Time           `json:"computedAt"`
}

// RiskKeyword is one entry of a project's highest-risk list.
type RiskKeyword struct {
	KeywordTargetID uuid.UUID `json:"keywordTargetId"`
	Query           string    `json:"query"`
	VolatilityScore float64   `json:"volatilityScore"`
	Regime          string    `json:"regime"`
	Maturity        string    `json:"maturity"`
	SampleSize      int       `json:"sampleSize"`
}

// ProjectRiskSummary aggregates every keyword target in a project.
// Regime and maturity bucket counts each sum to KeywordCount.
type ProjectRiskSummary struct {
	ProjectID                      uuid.UUID      `json:"projectId"`
	KeywordCount                   int            `json:"keywordCount"`
	ActiveKeywordCount             int            `json:"activeKeywordCount"`
	AverageVolatilityScore         float64        `json:"averageVolatilityScore"`
	MaxVolatilityScore             float64        `json:"maxVolatilityScore"`
	RegimeDistribution             map[string]int `json:"regimeDistribution"`
	MaturityDistribution           map[string]int `json:"maturityDistribution"`
	WeightedProjectVolatilityScore float64        `json:"weightedProjectVolatilityScore"`
	VolatilityConcentrationRatio   *float64       `json:"volatilityConcentrationRatio"`
	Top3RiskKeywords               []RiskKeyword  `json:"top3RiskKeywords"`
	ComputedAt                     time.Time      `json:"computedAt"`
}
