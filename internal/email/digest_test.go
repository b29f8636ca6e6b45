package email

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"serpwatch/internal/models"
)

func testProject() *models.Project {
	email := "ops@example.com"
	return &models.Project{
		ID:          uuid.New(),
		Name:        "Acme SEO",
		Slug:        "acme",
		NotifyEmail: &email,
	}
}

func testAlerts() []models.Alert {
	targetID := uuid.New()
	return []models.Alert{
		{
			Type:            models.AlertTypeRegimeTransition,
			TriggeredAt:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			KeywordTargetID: &targetID,
			Query:           "espresso machines",
			RegimeTransition: &models.RegimeTransitionAlert{
				FromRegime: models.RegimeCalm,
				ToRegime:   models.RegimeUnstable,
				FromScore:  5,
				ToScore:    60,
			},
		},
		{
			Type:        models.AlertTypeConcentrationRisk,
			TriggeredAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			ConcentrationRisk: &models.ConcentrationRiskAlert{
				ConcentrationRatio: 0.92,
				Threshold:          0.8,
			},
		},
	}
}

func TestBuildDigest(t *testing.T) {
	htmlBody, textBody := BuildDigest(testProject(), testAlerts(), 7)

	for _, want := range []string{"Acme SEO", "espresso machines", "calm -> unstable"} {
		if !strings.Contains(textBody, want) {
			t.Errorf("text body missing %q:\n%s", want, textBody)
		}
	}
	if !strings.Contains(textBody, "0.92") {
		t.Errorf("text body missing concentration ratio:\n%s", textBody)
	}
	if !strings.Contains(htmlBody, "Acme SEO") {
		t.Errorf("html body missing project name:\n%s", htmlBody)
	}
	if !strings.Contains(htmlBody, "7 day(s)") {
		t.Errorf("html body missing window:\n%s", htmlBody)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage("serpwatch <noreply@example.com>", []string{"ops@example.com"}, "test subject", "<p>html</p>", "plain")

	for _, want := range []string{
		"From: serpwatch <noreply@example.com>",
		"To: ops@example.com",
		"Subject: test subject",
		"multipart/alternative",
		"<p>html</p>",
		"plain",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}
