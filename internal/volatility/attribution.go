package volatility

import (
	"sort"
	"time"

	"serpwatch/internal/models"
)

// Breakdown attributes rank churn to individual URLs across the windowed
// pair sequence. Only URLs appearing in at least one paired snapshot are
// counted, so a lone snapshot yields an empty breakdown. Output is sorted
// by total absolute shift descending, URL ascending on ties, and capped at
// topN entries; URLCount reports the distinct-URL total before the cap.
func (e *Engine) Breakdown(target *models.KeywordTarget, snaps []models.SerpSnapshot, windowDays, topN int, now time.Time) models.VolatilityBreakdown {
	windowed := Window(snaps, windowDays, now)
	pairs := Pairs(windowed)

	out := models.VolatilityBreakdown{
		KeywordTargetID: target.ID,
		SampleSize:      len(pairs),
		URLs:            []models.URLAttribution{},
		ComputedAt:      now,
	}
	if len(pairs) == 0 {
		return out
	}

	attrs := make(map[string]*models.URLAttribution)
	touch := func(url string, seen time.Time) *models.URLAttribution {
		a, ok := attrs[url]
		if !ok {
			a = &models.URLAttribution{URL: url, FirstSeen: seen, LastSeen: seen}
			attrs[url] = a
		}
		if seen.Before(a.FirstSeen) {
			a.FirstSeen = seen
		}
		if seen.After(a.LastSeen) {
			a.LastSeen = seen
		}
		return a
	}

	// Appearances count each windowed snapshot containing the URL once, so
	// snapshots interior to the window are not double-counted across the two
	// pairs that share them.
	for i := range windowed {
		for _, r := range windowed[i].Results {
			touch(r.URL, windowed[i].CapturedAt).Appearances++
		}
	}

	for _, p := range pairs {
		for _, r := range p.From.Results {
			toRank := p.To.RankOf(r.URL)
			if toRank == 0 {
				continue
			}
			shift := toRank - r.Rank
			if shift < 0 {
				shift = -shift
			}
			a := attrs[r.URL]
			a.TotalAbsShift += shift
			a.PairsBothPresent++
		}
	}

	urls := make([]models.URLAttribution, 0, len(attrs))
	for _, a := range attrs {
		if a.PairsBothPresent > 0 {
			a.AverageShift = float64(a.TotalAbsShift) / float64(a.PairsBothPresent)
		}
		urls = append(urls, *a)
	}
	sort.Slice(urls, func(i, j int) bool {
		if urls[i].TotalAbsShift != urls[j].TotalAbsShift {
			return urls[i].TotalAbsShift > urls[j].TotalAbsShift
		}
		return urls[i].URL < urls[j].URL
	})

	out.URLCount = len(urls)
	if len(urls) > topN {
		urls = urls[:topN]
	}
	out.URLs = urls
	return out
}
