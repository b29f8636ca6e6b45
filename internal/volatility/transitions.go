package volatility

import (
	"sort"
	"strings"
	"time"

	"serpwatch/internal/models"
)

// Transitions classifies every windowed pair by its feature-set transition
// and tallies occurrences. Feature sets are sorted ascending so transition
// identity is order-insensitive; counts always sum to the pair count.
// Output is sorted by count descending, then from-set, then to-set.
func (e *Engine) Transitions(target *models.KeywordTarget, snaps []models.SerpSnapshot, windowDays int, now time.Time) models.TransitionMatrix {
	windowed := Window(snaps, windowDays, now)
	pairs := Pairs(windowed)

	matrix := models.TransitionMatrix{
		KeywordTargetID:  target.ID,
		SampleSize:       len(pairs),
		TotalTransitions: len(pairs),
		Transitions:      []models.FeatureTransition{},
		ComputedAt:       now,
	}
	if len(pairs) == 0 {
		return matrix
	}

	type key struct{ from, to string }
	counts := make(map[key]int)
	sets := make(map[key][2][]string)
	for _, p := range pairs {
		from := sortedFeatures(p.From.Features)
		to := sortedFeatures(p.To.Features)
		k := key{from: strings.Join(from, ","), to: strings.Join(to, ",")}
		counts[k]++
		if _, ok := sets[k]; !ok {
			sets[k] = [2][]string{from, to}
		}
	}

	for k, count := range counts {
		matrix.Transitions = append(matrix.Transitions, models.FeatureTransition{
			FromFeatureSet: sets[k][0],
			ToFeatureSet:   sets[k][1],
			Count:          count,
		})
	}
	sort.Slice(matrix.Transitions, func(i, j int) bool {
		a, b := matrix.Transitions[i], matrix.Transitions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		ak := strings.Join(a.FromFeatureSet, ",")
		bk := strings.Join(b.FromFeatureSet, ",")
		if ak != bk {
			return ak < bk
		}
		return strings.Join(a.ToFeatureSet, ",") < strings.Join(b.ToFeatureSet, ",")
	})
	matrix.DistinctTransitionCount = len(matrix.Transitions)
	return matrix
}

func sortedFeatures(features []string) []string {
	out := make([]string, len(features))
	copy(out, features)
	sort.Strings(out)
	return out
}
