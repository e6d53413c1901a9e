package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"AlertSentinel/internal/model"
	"AlertSentinel/internal/strategy"
	"AlertSentinel/internal/window"
)

// FormatLastAction formats a resolved action into a Telegram message.
func FormatLastAction(la *model.LastAction, evaluatedAt time.Time) string {
	if la == nil {
		return "⏸ <b>No action</b>\n\nNo strategy has triggered."
	}
	icon := "🟢"
	if la.Action == model.ActionSell {
		icon = "🔴"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b>\n\n", icon, la.Action, html.EscapeString(la.Ticker)))
	b.WriteString(fmt.Sprintf("Strategy: %s\n", html.EscapeString(la.Strategy)))
	if la.Timestamp != "" {
		b.WriteString(fmt.Sprintf("Signal time: %s\n", html.EscapeString(la.Timestamp)))
	}
	if !evaluatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Evaluated: %s\n", evaluatedAt.UTC().Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

// FormatScores formats the score table of an evaluation.
func FormatScores(res strategy.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Strategy scores</b> | %s\n\n", res.EvaluatedAt.UTC().Format("2006-01-02 15:04")))
	if len(res.TickerData) == 0 {
		b.WriteString("No strategy triggered.\n")
		return b.String()
	}
	for _, row := range res.TickerData {
		b.WriteString(fmt.Sprintf("<b>%s</b> %s · %s\n",
			html.EscapeString(row.Ticker), html.EscapeString(row.Timeframe), html.EscapeString(row.Strategy)))
		b.WriteString(fmt.Sprintf("  score %.2f | %s\n", row.Score, html.EscapeString(strings.Join(row.AlertsFound, ", "))))
		if len(row.MissingAlerts) > 0 {
			b.WriteString(fmt.Sprintf("  → %s\n", html.EscapeString(strings.Join(row.MissingAlerts, ", "))))
		}
	}
	return b.String()
}

// FormatAlertGroups lists grouped alerts with their expiry countdowns.
func FormatAlertGroups(groups []model.TickerGroup, f *window.Filter, now time.Time) string {
	var b strings.Builder
	b.WriteString("🔔 <b>Active alerts</b>\n")
	if len(groups) == 0 {
		b.WriteString("\nNo alerts.\n")
		return b.String()
	}
	for _, g := range groups {
		header := html.EscapeString(g.Ticker)
		if g.Timeframe != "" {
			header += " " + html.EscapeString(g.Timeframe)
		}
		b.WriteString(fmt.Sprintf("\n<b>%s</b>\n", header))
		for _, a := range g.Alerts {
			mark := ""
			if f.Classify(a, now) == window.Expiring {
				mark = " ⏳"
			}
			b.WriteString(fmt.Sprintf("• %s %s: %s (%s)%s\n",
				html.EscapeString(a.Timeframe), html.EscapeString(a.Indicator), html.EscapeString(a.Trigger),
				f.TimeUntilExpiry(a, now), mark))
		}
	}
	return b.String()
}
