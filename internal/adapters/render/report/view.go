package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Krishi Session"),
	}

	if report.Session == nil {
		lines = append(lines, s.empty.Render("Not signed in. Run `krishi login` to get started."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	user := report.Session.User
	lines = append(lines,
		s.identity.Render(fmt.Sprintf("%s <%s>", user.Name, user.Email)),
		s.detail.Render(fmt.Sprintf("predictions cached: %d", len(report.Predictions))),
	)

	lines = append(lines, s.section.Render(weatherLines(report, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func weatherLines(report Report, s styles) string {
	if report.Weather == nil {
		return s.empty.Render("weather: no snapshot (run `krishi weather`)")
	}

	w := report.Weather
	label := w.LocationLabel
	if label == "" {
		label = "unknown location"
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.header.Render(fmt.Sprintf("weather @ %s", label)),
		s.detail.Render(fmt.Sprintf("temperature: %.1f °C", w.TemperatureC)),
		s.detail.Render(fmt.Sprintf("humidity:    %.0f %%", w.HumidityPct)),
		s.detail.Render(fmt.Sprintf("rainfall:    %.1f mm (last hour)", w.RainfallMM)),
	)
}

func renderHistoryView(report Report, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Prediction History"),
		s.header.Render(fmt.Sprintf("records: %d", len(report.Predictions))),
	}

	if len(report.Predictions) == 0 {
		lines = append(lines, s.empty.Render("No predictions yet. Run `krishi predict` to create one."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, record := range report.Predictions {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			recordTitle(record.Crop, record.CreatedDate, opts.Now, s),
			confidenceLine(record.ConfidencePercent, s),
			s.detail.Render(fmt.Sprintf(
				"N %.0f  P %.0f  K %.0f  pH %.1f  temp %.1f°C  humidity %.0f%%  rain %.0fmm",
				record.Parameters.Nitrogen,
				record.Parameters.Phosphorus,
				record.Parameters.Potassium,
				record.Parameters.PH,
				record.Parameters.Temperature,
				record.Parameters.Humidity,
				record.Parameters.Rainfall,
			)),
		)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func recordTitle(crop string, created, now time.Time, s styles) string {
	title := s.crop.Render(crop)
	if created.IsZero() {
		return title
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", s.header.Render(formatCreated(created, now)))
}

func confidenceLine(percent float64, s styles) string {
	bar := renderConfidenceBar(percent, 24, s)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.detail.Render("confidence:"),
		" ",
		bar,
		" ",
		s.detail.Render(fmt.Sprintf("%2.0f%%", clampPercent(percent))),
	)
}

func renderConfidenceBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(percent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatCreated(created, now time.Time) string {
	if now.IsZero() {
		return created.Format("2006-01-02")
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := created.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return "today " + created.Format("15:04")
	}

	return created.Format("02 Jan 2006")
}
