package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AI-overview status constants
const (
	AIOverviewAbsent  = "absent"
	AIOverviewPresent = "present"
)

// SerpResult is one ranked organic result within a snapshot.
type SerpResult struct {
	URL   string `json:"url"`
	Rank  int    `json:"rank"`
	Title string `json:"title"`
}

// SerpSnapshot is one append-only capture of a keyword target's result page.
// CapturedAt always carries a timezone offset; RawPayload is omitted from
// responses unless explicitly requested.
type SerpSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	KeywordTargetID uuid.UUID       `json:"keywordTargetId"`
	CapturedAt      time.Time       `json:"capturedAt"`
	Results         []SerpResult    `json:"results"`
	AIOverview      string          `json:"aiOverview"`
	Features        []string        `json:"features"`
	RawPayload      json.RawMessage `json:"rawPayload,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RankOf returns the rank of the given URL, or 0 when the URL is not present.
func (s *SerpSnapshot) RankOf(url string) int {
	for _, r := range s.Results {
		if r.URL == url {
			return r.Rank
		}
	}
	return 0
}

// FeatureSet returns the snapshot's feature tags as a set.
func (s *SerpSnapshot) FeatureSet() map[string]bool {
	set := make(map[string]bool, len(s.Features))
	for _, f := range s.Features {
		set[f] = true
	}
	return set
}
