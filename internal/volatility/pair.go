package volatility

// featureNormCap is the symmetric-difference size at which the feature
// sub-signal saturates.
const featureNormCap = 5

// Weights are the relative contributions of the three volatility
// sub-signals. They must sum to 1 so a pair score decomposes exactly into
// its three reported components.
type Weights struct {
	Rank       float64 `yaml:"rank"`
	AIOverview float64 `yaml:"aiOverview"`
	Feature    float64 `yaml:"feature"`
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{Rank: 0.55, AIOverview: 0.25, Feature: 0.20}
}

// Valid reports whether the weights are non-negative and sum to 1 within
// float tolerance.
func (w Weights) Valid() bool {
	if w.Rank < 0 || w.AIOverview < 0 || w.Feature < 0 {
		return false
	}
	sum := w.Rank + w.AIOverview + w.Feature
	return sum > 0.999 && sum < 1.001
}

// PairScore is the full volatility measurement for one snapshot pair.
// RankComponent + AIComponent + FeatureComponent == Score.
type PairScore struct {
	Pair

	Score            float64
	RankComponent    float64
	AIComponent      float64
	FeatureComponent float64

	AverageRankShift float64
	MaxRankShift     int
	Entered          int
	Exited           int
	Moved            int
	FeatureChanges   int
	AIFlipped        bool
}

// ScorePair computes the three volatility components and combined score for
// one pair. URLs present in both snapshots contribute |rankB - rankA|; URLs
// present in only one are maximal-shift events at the deeper of the two
// result-list depths. A pair with identical URL sets, unchanged AI-overview
// status, and unchanged features scores zero.
func ScorePair(p Pair, w Weights) PairScore {
	ps := PairScore{Pair: p}

	maxDepth := len(p.From.Results)
	if len(p.To.Results) > maxDepth {
		maxDepth = len(p.To.Results)
	}

	fromRanks := make(map[string]int, len(p.From.Results))
	for _, r := range p.From.Results {
		fromRanks[r.URL] = r.Rank
	}
	toRanks := make(map[string]int, len(p.To.Results))
	for _, r := range p.To.Results {
		toRanks[r.URL] = r.Rank
	}

	var shiftSum, events int
	for _, r := range p.From.Results {
		toRank, ok := toRanks[r.URL]
		if !ok {
			ps.Exited++
			shiftSum += maxDepth
			events++
			if maxDepth > ps.MaxRankShift {
				ps.MaxRankShift = maxDepth
			}
			continue
		}
		shift := toRank - r.Rank
		if shift < 0 {
			shift = -shift
		}
		if shift > 0 {
			ps.Moved++
		}
		shiftSum += shift
		events++
		if shift > ps.MaxRankShift {
			ps.MaxRankShift = shift
		}
	}
	for _, r := range p.To.Results {
		if _, ok := fromRanks[r.URL]; !ok {
			ps.Entered++
			shiftSum += maxDepth
			events++
			if maxDepth > ps.MaxRankShift {
				ps.MaxRankShift = maxDepth
			}
		}
	}

	if events > 0 {
		ps.AverageRankShift = float64(shiftSum) / float64(events)
	}

	ps.AIFlipped = p.From.AIOverview != p.To.AIOverview
	ps.FeatureChanges = symmetricDifferenceSize(p.From.FeatureSet(), p.To.FeatureSet())

	rankNorm := 0.0
	if maxDepth > 0 {
		rankNorm = ps.AverageRankShift / float64(maxDepth)
		if rankNorm > 1 {
			rankNorm = 1
		}
	}
	aiNorm := 0.0
	if ps.AIFlipped {
		aiNorm = 1
	}
	featNorm := float64(ps.FeatureChanges) / featureNormCap
	if featNorm > 1 {
		featNorm = 1
	}

	ps.RankComponent = 100 * w.Rank * rankNorm
	ps.AIComponent = 100 * w.AIOverview * aiNorm
	ps.FeatureComponent = 100 * w.Feature * featNorm
	ps.Score = ps.RankComponent + ps.AIComponent + ps.FeatureComponent
	return ps
}

// ScorePairs scores every pair in order.
func ScorePairs(pairs []Pair, w Weights) []PairScore {
	scores := make([]PairScore, 0, len(pairs))
	for _, p := range pairs {
		scores = append(scores, ScorePair(p, w))
	}
	return scores
}

func symmetricDifferenceSize(as, bs map[string]bool) int {
	n := 0
	for f := range as {
		if !bs[f] {
			n++
		}
	}
	for f := range bs {
		if !as[f] {
			n++
		}
	}
	return n
}
