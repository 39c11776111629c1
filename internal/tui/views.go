package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/burnwatch/burnwatch/internal/core"
	"github.com/burnwatch/burnwatch/internal/session"
)

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	if !m.hasData {
		sb.WriteString(dimStyle.Render("  fetching first snapshot…"))
		sb.WriteString("\n")
		return sb.String()
	}

	switch m.snapshot.Status {
	case core.StatusError, core.StatusAuth:
		sb.WriteString(m.renderProblem())
	default:
		sb.WriteString(m.renderQuotas())
		sb.WriteString("\n")
		sb.WriteString(m.renderSession())
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderHeader() string {
	left := " " + headerBrandStyle.Render("burnwatch") + dimStyle.Render("  ·  plan quota monitor")

	right := m.renderStatusBadge()
	if m.refreshing {
		right = dimStyle.Render("refreshing… ") + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	rule := " " + lipgloss.NewStyle().Foreground(colorSurface1).Render(strings.Repeat("─", max(m.width-2, 1)))
	return ansi.Truncate(line, m.width, "…") + "\n" + rule + "\n"
}

func (m Model) renderStatusBadge() string {
	status := m.snapshot.Status
	if !m.hasData {
		status = core.StatusUnknown
	}
	color := colorDim
	switch status {
	case core.StatusOK:
		color = colorGreen
	case core.StatusNearLimit, core.StatusLimited:
		color = colorYellow
	case core.StatusAuth:
		color = colorPeach
	case core.StatusError:
		color = colorRed
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(string(status)) + " "
}

func (m Model) renderProblem() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  " + lipgloss.NewStyle().Foreground(colorRed).Render(m.snapshot.Message))
	sb.WriteString("\n")
	if m.snapshot.Status == core.StatusAuth {
		sb.WriteString(dimStyle.Render("  set the API key environment variable and press r"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderQuotas() string {
	var sb strings.Builder
	sb.WriteString(" " + sectionHeaderStyle.Render("Quotas") + "\n")

	labelW := 14
	barW := clamp(m.width-labelW-28, 10, 40)

	for _, nf := range m.snapshot.Families() {
		pct := nf.Family.UsedPercent()
		gauge := RenderInlineGauge(pct, barW, m.warnThreshold, m.critThreshold)
		reset := resetLabel(nf.Family.ResetsAt, m.now)
		sb.WriteString(fmt.Sprintf("  %-*s %s %s  %s\n",
			labelW, dimStyle.Render(nf.Label),
			gauge,
			lipgloss.NewStyle().Foreground(statusColor(pct, m.warnThreshold, m.critThreshold)).Bold(true).Render(fmt.Sprintf("%3.0f%%", pct)),
			dimStyle.Render(reset)))
	}
	return sb.String()
}

func (m Model) renderSession() string {
	var sb strings.Builder

	title := sectionHeaderStyle.Render("Session")
	if !m.tracking {
		sb.WriteString(" " + title + "  " + dimStyle.Render("tracking off — press t to start") + "\n")
		return sb.String()
	}

	since := ""
	if !m.sessionAt.IsZero() {
		since = dimStyle.Render("since " + m.sessionAt.Format("15:04"))
	}
	sb.WriteString(" " + title + "  " + since + "\n")

	sb.WriteString(fmt.Sprintf("  %-12s %s\n",
		dimStyle.Render("This session"),
		valueStyle.Render(fmt.Sprintf("%+d%% subscription · %+d%% search · %+d%% tools",
			m.usage.Subscription, m.usage.Search, m.usage.ToolCalls))))

	sb.WriteString(fmt.Sprintf("  %-12s %s %s\n",
		dimStyle.Render("Burn rate"),
		valueStyle.Render(fmt.Sprintf("%.1f %%/h", m.analytics.BurnRatePerHour)),
		trendLabel(m.analytics.Trend)))

	if m.analytics.HoursUntilDepletion != nil {
		d := time.Duration(*m.analytics.HoursUntilDepletion * float64(time.Hour))
		sb.WriteString(fmt.Sprintf("  %-12s %s\n",
			dimStyle.Render("Depletion"),
			lipgloss.NewStyle().Foreground(colorRed).Bold(true).Render("in "+formatDuration(d)+" — before reset")))
	} else {
		sb.WriteString(fmt.Sprintf("  %-12s %s\n",
			dimStyle.Render("Depletion"),
			dimStyle.Render("not before reset")))
	}

	if m.analytics.ProjectedAtReset != nil {
		sb.WriteString(fmt.Sprintf("  %-12s %s\n",
			dimStyle.Render("At reset"),
			valueStyle.Render(fmt.Sprintf("~%d%% used", *m.analytics.ProjectedAtReset))))
	}

	if m.analytics.CycleRollover {
		sb.WriteString("  " + lipgloss.NewStyle().Foreground(colorPeach).Render("quota reset observed mid-session; forecast may lag one window") + "\n")
	}

	if chart := RenderHistorySparkline(m.analytics.History, clamp(m.width-6, 10, 60), 4); chart != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(chart, "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}

	return sb.String()
}

func (m Model) renderFooter() string {
	hints := footerStyle.Render(" q quit · r refresh · t tracking on/off")
	if m.updateVersion == "" {
		return hints
	}
	note := lipgloss.NewStyle().Foreground(colorTeal).Render("update " + m.updateVersion + " available ")
	gap := m.width - lipgloss.Width(hints) - lipgloss.Width(note)
	if gap < 1 {
		gap = 1
	}
	return hints + strings.Repeat(" ", gap) + note
}

func trendLabel(t session.Trend) string {
	switch t {
	case session.TrendRising:
		return lipgloss.NewStyle().Foreground(colorYellow).Render("↗ rising")
	case session.TrendFalling:
		return lipgloss.NewStyle().Foreground(colorGreen).Render("↘ falling")
	default:
		return dimStyle.Render("→ flat")
	}
}

func resetLabel(resetsAt time.Time, now time.Time) string {
	if resetsAt.IsZero() {
		return ""
	}
	d := resetsAt.Sub(now)
	if d <= 0 {
		return "resetting…"
	}
	return "resets in " + formatDuration(d)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, min)
	}
	return fmt.Sprintf("%dm", min)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
