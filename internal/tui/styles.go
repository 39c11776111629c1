package tui

import "github.com/charmbracelet/lipgloss"

// ─── Color Palette (Catppuccin Mocha) ───────────────────────────────────────

var (
	colorBase     = lipgloss.Color("#1E1E2E")
	colorSurface0 = lipgloss.Color("#313244")
	colorSurface1 = lipgloss.Color("#45475A")
	colorText     = lipgloss.Color("#CDD6F4")
	colorSubtext  = lipgloss.Color("#A6ADC8")
	colorDim      = lipgloss.Color("#585B70")

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – primary accent
	colorBlue     = lipgloss.Color("#89B4FA")
	colorSapphire = lipgloss.Color("#74C7EC")
	colorGreen    = lipgloss.Color("#A6E3A1") // OK / healthy
	colorYellow   = lipgloss.Color("#F9E2AF") // warning
	colorRed      = lipgloss.Color("#F38BA8") // critical
	colorPeach    = lipgloss.Color("#FAB387") // auth issues
	colorTeal     = lipgloss.Color("#94E2D5")
	colorLavender = lipgloss.Color("#B4BEFE") // titles
)

// ─── Reusable Styles ────────────────────────────────────────────────────────

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

func statusColor(pct, warn, crit float64) lipgloss.Color {
	switch {
	case pct >= crit*100:
		return colorRed
	case pct >= warn*100:
		return colorYellow
	default:
		return colorGreen
	}
}
