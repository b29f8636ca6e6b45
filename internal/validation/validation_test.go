package validation

import (
	"testing"

	"serpwatch/internal/models"
)

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Espresso Machines", "espresso machines"},
		{"  best   vpn  ", "best vpn"},
		{"already normal", "already normal"},
		{"Tabs\tand\nnewlines", "tabs and newlines"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeQuery(tc.input); got != tc.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestValidateQuery(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}

	cases := []struct {
		query string
		want  bool
	}{
		{"valid query", true},
		{"", false},
		{string(long), false},
	}

	for _, tc := range cases {
		if got := ValidateQuery(tc.query); got != tc.want {
			t.Errorf("ValidateQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestValidateLocale(t *testing.T) {
	cases := []struct {
		locale string
		want   bool
	}{
		{"en", true},
		{"en-US", true},
		{"pt-BR", true},
		{"EN-us", false},
		{"english", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := ValidateLocale(tc.locale); got != tc.want {
			t.Errorf("ValidateLocale(%q) = %v, want %v", tc.locale, got, tc.want)
		}
	}
}

func TestValidateDevice(t *testing.T) {
	if !ValidateDevice("desktop") || !ValidateDevice("mobile") {
		t.Error("expected desktop and mobile to be valid")
	}
	for _, bad := range []string{"tablet", "Desktop", ""} {
		if ValidateDevice(bad) {
			t.Errorf("ValidateDevice(%q) = true, want false", bad)
		}
	}
}

func TestIntParam(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"empty uses default", "", 25, false},
		{"valid", "30", 30, false},
		{"lower bound", "1", 1, false},
		{"upper bound", "365", 365, false},
		{"zero", "0", 0, true},
		{"above max", "366", 0, true},
		{"non-integer", "7.5", 0, true},
		{"not a number", "week", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IntParam(tc.raw, "windowDays", 25, 1, 365)
			if (err != nil) != tc.wantErr {
				t.Fatalf("IntParam(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			}
			if err == nil && got != tc.want {
				t.Errorf("IntParam(%q) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestRequiredIntParam(t *testing.T) {
	if _, err := RequiredIntParam("", "windowDays", 1, 30); err == nil {
		t.Error("expected error for missing required parameter")
	}
	if v, err := RequiredIntParam("7", "windowDays", 1, 30); err != nil || v != 7 {
		t.Errorf("RequiredIntParam(7) = %d, %v", v, err)
	}
}

func TestFloatParam(t *testing.T) {
	if v, err := FloatParam("", "spikeThreshold", 75, 0, 100); err != nil || v != 75 {
		t.Errorf("FloatParam(empty) = %v, %v", v, err)
	}
	if v, err := FloatParam("82.5", "spikeThreshold", 75, 0, 100); err != nil || v != 82.5 {
		t.Errorf("FloatParam(82.5) = %v, %v", v, err)
	}
	if _, err := FloatParam("101", "spikeThreshold", 75, 0, 100); err == nil {
		t.Error("expected error for out-of-range value")
	}
	if _, err := FloatParam("high", "spikeThreshold", 75, 0, 100); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestParseCapturedAt(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"with offset", "2026-03-01T12:00:00+02:00", false},
		{"utc", "2026-03-01T12:00:00Z", false},
		{"date only", "2026-03-01", true},
		{"no timezone", "2026-03-01T12:00:00", true},
		{"empty", "", true},
		{"garbage", "yesterday", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCapturedAt(tc.raw); (err != nil) != tc.wantErr {
				t.Errorf("ParseCapturedAt(%q) error = %v, wantErr %v", tc.raw, err, tc.wantErr)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	valid := []models.SerpResult{
		{URL: "https://a.example", Rank: 1},
		{URL: "https://b.example", Rank: 2},
	}
	if err := ValidateResults(valid); err != nil {
		t.Errorf("ValidateResults(valid) error = %v", err)
	}
	if err := ValidateResults(nil); err != nil {
		t.Errorf("ValidateResults(nil) error = %v", err)
	}

	dup := []models.SerpResult{
		{URL: "https://a.example", Rank: 1},
		{URL: "https://a.example", Rank: 2},
	}
	if err := ValidateResults(dup); err == nil {
		t.Error("expected error for duplicate URL")
	}

	outOfOrder := []models.SerpResult{
		{URL: "https://a.example", Rank: 2},
		{URL: "https://b.example", Rank: 1},
	}
	if err := ValidateResults(outOfOrder); err == nil {
		t.Error("expected error for non-increasing ranks")
	}

	missingURL := []models.SerpResult{{URL: "", Rank: 1}}
	if err := ValidateResults(missingURL); err == nil {
		t.Error("expected error for empty URL")
	}
}
