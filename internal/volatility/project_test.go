package volatility

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serpwatch/internal/models"
)

// churnySnaps returns n captures that reverse order every day, producing a
// non-zero score for every pair.
func churnySnaps(n int, urls []string) []models.SerpSnapshot {
	reversed := make([]string, len(urls))
	for i, u := range urls {
		reversed[len(urls)-1-i] = u
	}
	snaps := make([]models.SerpSnapshot, 0, n)
	for i := n - 1; i >= 0; i-- {
		set := urls
		if i%2 == 1 {
			set = reversed
		}
		snaps = append(snaps, snap(i, set, models.AIOverviewAbsent))
	}
	return snaps
}

func TestProjectSummary_EmptyProject(t *testing.T) {
	e := New(DefaultWeights())

	summary := e.ProjectSummary(uuid.New(), nil, 0, testNow)

	assert.Equal(t, 0, summary.KeywordCount)
	assert.Equal(t, 0, summary.ActiveKeywordCount)
	assert.Nil(t, summary.VolatilityConcentrationRatio)
	assert.Empty(t, summary.Top3RiskKeywords)
}

func TestProjectSummary_BucketsSumToKeywordCount(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("one"), Snapshots: churnySnaps(25, []string{"a", "b", "c"})},
		{Target: *target("two"), Snapshots: steadySnaps(10, []string{"a", "b"})},
		{Target: *target("three"), Snapshots: steadySnaps(2, []string{"a"})},
		{Target: *target("four")},
	}

	summary := e.ProjectSummary(uuid.New(), keywords, 0, testNow)

	require.Equal(t, 4, summary.KeywordCount)

	regimeTotal := 0
	for _, n := range summary.RegimeDistribution {
		regimeTotal += n
	}
	assert.Equal(t, summary.KeywordCount, regimeTotal)

	maturityTotal := 0
	for _, n := range summary.MaturityDistribution {
		maturityTotal += n
	}
	assert.Equal(t, summary.KeywordCount, maturityTotal)
}

func TestProjectSummary_ConcentrationRatioNilWhenAllCalm(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("one"), Snapshots: steadySnaps(5, []string{"a", "b"})},
		{Target: *target("two"), Snapshots: steadySnaps(5, []string{"a", "b"})},
	}

	summary := e.ProjectSummary(uuid.New(), keywords, 0, testNow)

	assert.Equal(t, 0, summary.ActiveKeywordCount)
	assert.Nil(t, summary.VolatilityConcentrationRatio)
}

func TestProjectSummary_ConcentrationRatio(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("one"), Snapshots: churnySnaps(6, []string{"a", "b", "c"})},
		{Target: *target("two"), Snapshots: churnySnaps(6, []string{"x", "y", "z"})},
		{Target: *target("three"), Snapshots: churnySnaps(6, []string{"p", "q"})},
		{Target: *target("four"), Snapshots: churnySnaps(6, []string{"m", "n"})},
	}

	summary := e.ProjectSummary(uuid.New(), keywords, 0, testNow)

	require.NotNil(t, summary.VolatilityConcentrationRatio)
	ratio := *summary.VolatilityConcentrationRatio

	var total, topSum float64
	for _, kd := range keywords {
		total += e.KeywordVolatility(&kd.Target, kd.Snapshots, 0, testNow).VolatilityScore
	}
	for _, k := range summary.Top3RiskKeywords {
		topSum += k.VolatilityScore
	}
	assert.InDelta(t, topSum/total, ratio, 0.01)
	assert.GreaterOrEqual(t, ratio, 0.0)
	assert.LessOrEqual(t, ratio, 1.0)
}

func TestProjectSummary_Top3SortedByScoreThenQuery(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("bravo"), Snapshots: churnySnaps(6, []string{"a", "b"})},
		{Target: *target("alpha"), Snapshots: churnySnaps(6, []string{"x", "y"})},
		{Target: *target("quiet"), Snapshots: steadySnaps(6, []string{"q"})},
	}

	summary := e.ProjectSummary(uuid.New(), keywords, 0, testNow)

	require.Len(t, summary.Top3RiskKeywords, 3)
	// bravo and alpha tie on score; alpha wins the query tie-break.
	assert.Equal(t, "alpha", summary.Top3RiskKeywords[0].Query)
	assert.Equal(t, "bravo", summary.Top3RiskKeywords[1].Query)
	assert.Equal(t, "quiet", summary.Top3RiskKeywords[2].Query)
}

func TestProjectSummary_WeightedScoreNonNegative(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("one"), Snapshots: churnySnaps(10, []string{"a", "b"})},
		{Target: *target("two")},
	}

	summary := e.ProjectSummary(uuid.New(), keywords, 0, testNow)

	assert.GreaterOrEqual(t, summary.WeightedProjectVolatilityScore, 0.0)
}

func TestAlertFeed_FiltersByThresholdAndMaturity(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("loud"), Snapshots: churnySnaps(25, []string{"a", "b", "c"})},
		{Target: *target("quiet"), Snapshots: steadySnaps(25, []string{"a", "b"})},
		{Target: *target("thin"), Snapshots: churnySnaps(3, []string{"x", "y"})},
	}

	items := e.AlertFeed(keywords, 0, 10, models.MaturityDeveloping, testNow)

	require.Len(t, items, 1)
	assert.Equal(t, "loud", items[0].Query)
}

func TestAlertFeed_SortedByScoreDescThenID(t *testing.T) {
	e := New(DefaultWeights())
	keywords := []KeywordData{
		{Target: *target("one"), Snapshots: churnySnaps(25, []string{"a", "b"})},
		{Target: *target("two"), Snapshots: churnySnaps(25, []string{"x", "y"})},
		{Target: *target("three"), Snapshots: churnySnaps(25, []string{"p", "q", "r"})},
	}

	items := e.AlertFeed(keywords, 0, 0, models.MaturityPreliminary, testNow)

	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		ok := prev.VolatilityScore > cur.VolatilityScore ||
			(prev.VolatilityScore == cur.VolatilityScore &&
				prev.KeywordTargetID.String() < cur.KeywordTargetID.String())
		assert.True(t, ok, "items out of order at %d", i)
	}
}
