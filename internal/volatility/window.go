// Package volatility computes keyword-volatility analytics from SERP
// snapshot sequences. Everything here is a pure function of the snapshots
// and parameters passed in: the package performs no I/O and holds no state
// beyond the configured scoring weights, so results are deterministic for an
// unchanged snapshot set.
package volatility

import (
	"sort"
	"time"

	"serpwatch/internal/models"
)

// Pair is two temporally adjacent snapshots of the same keyword target, the
// atomic unit of volatility measurement.
type Pair struct {
	From *models.SerpSnapshot
	To   *models.SerpSnapshot
}

// Window filters snapshots to the trailing windowDays before now and sorts
// them ascending by capture time (id as tie-break). windowDays <= 0 means
// unbounded history. Bounds checking on windowDays happens at the validation
// layer before this is called.
func Window(snaps []models.SerpSnapshot, windowDays int, now time.Time) []models.SerpSnapshot {
	out := make([]models.SerpSnapshot, 0, len(snaps))
	if windowDays > 0 {
		cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
		for _, s := range snaps {
			if !s.CapturedAt.Before(cutoff) {
				out = append(out, s)
			}
		}
	} else {
		out = append(out, snaps...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CapturedAt.Equal(out[j].CapturedAt) {
			return out[i].CapturedAt.Before(out[j].CapturedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Pairs forms consecutive pairs from an already-windowed, ascending snapshot
// sequence. A sequence of n snapshots yields max(0, n-1) pairs.
func Pairs(snaps []models.SerpSnapshot) []Pair {
	if len(snaps) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		pairs = append(pairs, Pair{From: &snaps[i-1], To: &snaps[i]})
	}
	return pairs
}
