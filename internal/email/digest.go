package email

import (
	"fmt"
	"html"
	"strings"

	"serpwatch/internal/models"
)

// NotifyAlertDigest sends a project's alert digest to its notification
// address.
func (s *Service) NotifyAlertDigest(project *models.Project, alerts []models.Alert, windowDays int) {
	if project.NotifyEmail == nil || len(alerts) == 0 {
		return
	}

	subject := fmt.Sprintf("[serpwatch] %d volatility alert(s) for %s", len(alerts), project.Name)
	htmlBody, textBody := BuildDigest(project, alerts, windowDays)
	s.SendAsync([]string{*project.NotifyEmail}, subject, htmlBody, textBody)
}

// BuildDigest renders the HTML and plain-text bodies of an alert digest.
func BuildDigest(project *models.Project, alerts []models.Alert, windowDays int) (string, string) {
	var htmlBuf, textBuf strings.Builder

	htmlBuf.WriteString(fmt.Sprintf("<h2>Volatility alerts for %s</h2>", html.EscapeString(project.Name)))
	htmlBuf.WriteString(fmt.Sprintf("<p>Trailing window: %d day(s)</p><ul>", windowDays))
	textBuf.WriteString(fmt.Sprintf("Volatility alerts for %s (trailing %d day(s))\n\n", project.Name, windowDays))

	for _, a := range alerts {
		line := describeAlert(a)
		htmlBuf.WriteString("<li>" + html.EscapeString(line) + "</li>")
		textBuf.WriteString("- " + line + "\n")
	}
	htmlBuf.WriteString("</ul>")

	return htmlBuf.String(), textBuf.String()
}

func describeAlert(a models.Alert) string {
	switch a.Type {
	case models.AlertTypeRegimeTransition:
		return fmt.Sprintf("%s: regime moved %s -> %s at %s",
			a.Query, a.RegimeTransition.FromRegime, a.RegimeTransition.ToRegime,
			a.TriggeredAt.Format("2006-01-02 15:04 MST"))
	case models.AlertTypeSpike:
		return fmt.Sprintf("%s: volatility spike %.1f (threshold %.1f, margin %.1f) at %s",
			a.Query, a.Spike.PairVolatilityScore, a.Spike.Threshold, a.Spike.Margin,
			a.TriggeredAt.Format("2006-01-02 15:04 MST"))
	case models.AlertTypeConcentrationRisk:
		return fmt.Sprintf("project concentration ratio %.2f exceeds threshold %.2f",
			a.ConcentrationRisk.ConcentrationRatio, a.ConcentrationRisk.Threshold)
	}
	return "unknown alert"
}
