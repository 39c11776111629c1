package tui

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/burnwatch/burnwatch/internal/session"
)

// RenderInlineGauge draws a filled/track bar for a 0–100 percent value,
// colored by the warn/crit thresholds.
func RenderInlineGauge(pct float64, w int, warn, crit float64) string {
	if w < 4 {
		w = 4
	}
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct / 100 * float64(w))
	if filled < 1 && pct > 0 {
		filled = 1
	}
	empty := w - filled

	barColor := statusColor(pct, warn, crit)
	bar := lipgloss.NewStyle().Foreground(barColor).Render(strings.Repeat("█", filled))
	track := lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("░", empty))

	return bar + track
}

// RenderHistorySparkline charts the session history buffer. Needs at
// least two points to be worth drawing.
func RenderHistorySparkline(history []session.HistoryPoint, w, h int) string {
	if len(history) < 2 {
		return ""
	}
	if w < 10 {
		w = 10
	}
	if h < 2 {
		h = 2
	}

	values := lo.Map(history, func(p session.HistoryPoint, _ int) float64 {
		return float64(p.UsedPercent)
	})

	sl := sparkline.New(w, h,
		sparkline.WithMaxValue(100),
		sparkline.WithStyle(lipgloss.NewStyle().Foreground(colorSapphire)),
	)
	for _, v := range values {
		sl.Push(v)
	}
	sl.Draw()
	return sl.View()
}
