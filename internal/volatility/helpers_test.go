package volatility

import (
	"time"

	"github.com/google/uuid"

	"serpwatch/internal/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// snap builds a snapshot captured daysAgo days before testNow with the given
// URLs ranked in order.
func snap(daysAgo int, urls []string, aiOverview string, features ...string) models.SerpSnapshot {
	results := make([]models.SerpResult, len(urls))
	for i, u := range urls {
		results[i] = models.SerpResult{URL: u, Rank: i + 1, Title: u}
	}
	if features == nil {
		features = []string{}
	}
	return models.SerpSnapshot{
		ID:         uuid.New(),
		CapturedAt: testNow.AddDate(0, 0, -daysAgo),
		Results:    results,
		AIOverview: aiOverview,
		Features:   features,
	}
}

func target(query string) *models.KeywordTarget {
	return &models.KeywordTarget{
		ID:     uuid.New(),
		Query:  query,
		Locale: "en-US",
		Device: models.DeviceDesktop,
	}
}

// steadySnaps returns n identical captures one day apart, oldest first.
func steadySnaps(n int, urls []string) []models.SerpSnapshot {
	snaps := make([]models.SerpSnapshot, 0, n)
	for i := n - 1; i >= 0; i-- {
		snaps = append(snaps, snap(i, urls, models.AIOverviewAbsent))
	}
	return snaps
}
