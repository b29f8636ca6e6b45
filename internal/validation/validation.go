package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"serpwatch/internal/models"
)

// whitespaceRun matches one or more consecutive whitespace characters.
var whitespaceRun = regexp.MustCompile(`\s+`)

// localePattern matches locale tags such as "en", "en-US", "pt-BR".
var localePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

// NormalizeQuery trims, collapses internal whitespace, and lower-cases a
// query string so lookups and uniqueness are insensitive to cosmetic
// variations.
func NormalizeQuery(q string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(q), " "))
}

// ValidateQuery checks a normalized query is non-empty and within bounds.
func ValidateQuery(q string) bool {
	return q != "" && len(q) <= 200
}

// ValidateLocale checks a locale tag.
func ValidateLocale(locale string) bool {
	return localePattern.MatchString(locale)
}

// ValidateDevice checks the device class enum.
func ValidateDevice(device string) bool {
	return device == models.DeviceDesktop || device == models.DeviceMobile
}

// ValidateAIOverview checks the AI-overview status enum.
func ValidateAIOverview(status string) bool {
	return status == models.AIOverviewAbsent || status == models.AIOverviewPresent
}

// ValidateMaturity checks a maturity tier value.
func ValidateMaturity(m string) bool {
	return models.MaturityRank(m) >= 0
}

// IntParam parses an optional integer query parameter. An empty raw value
// yields def. Non-integer or out-of-range values return an error suitable
// for a 400 response.
func IntParam(raw, name string, def, min, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}

// RequiredIntParam parses a required integer query parameter.
func RequiredIntParam(raw, name string, min, max int) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	return IntParam(raw, name, 0, min, max)
}

// FloatParam parses an optional float query parameter with bounds.
func FloatParam(raw, name string, def, min, max float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %g and %g", name, min, max)
	}
	return v, nil
}

// ParseCapturedAt parses a capture timestamp. Only RFC 3339 values are
// accepted, which forces an explicit timezone offset; date-only values fail.
func ParseCapturedAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("capturedAt is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("capturedAt must be an RFC 3339 timestamp with timezone offset")
	}
	return t, nil
}

// ValidateResults checks an ingested result list: ranks must be positive and
// strictly increasing, and URLs must be non-empty and unique within the
// snapshot.
func ValidateResults(results []models.SerpResult) error {
	seen := make(map[string]bool, len(results))
	lastRank := 0
	for i, r := range results {
		if r.URL == "" {
			return fmt.Errorf("results[%d].url is required", i)
		}
		if seen[r.URL] {
			return fmt.Errorf("results[%d].url %q appears more than once", i, r.URL)
		}
		seen[r.URL] = true
		if r.Rank <= lastRank {
			return fmt.Errorf("results[%d].rank must be positive and strictly increasing", i)
		}
		lastRank = r.Rank
	}
	return nil
}
