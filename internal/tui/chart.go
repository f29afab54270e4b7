package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"portfolio_tracker/internal/view"
)

var chartPalette = []lipgloss.Color{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#A28EFF", "#FF6F91"}

// renderChart draws one horizontal bar per slice, scaled to width at 100%.
func renderChart(slices []view.ChartSlice, width int) string {
	labelWidth := 0
	for _, s := range slices {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	var b strings.Builder
	for i, s := range slices {
		bar := int(s.Share*float64(width) + 0.5)
		if bar < 1 {
			bar = 1
		}
		style := lipgloss.NewStyle().Foreground(chartPalette[i%len(chartPalette)])
		b.WriteString(lipgloss.NewStyle().Width(labelWidth + 2).Render(s.Label))
		b.WriteString(style.Render(strings.Repeat("█", bar)))
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render(view.FormatUSD(s.Value)))
		b.WriteString("\n")
	}
	return b.String()
}
