package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
)

const breakdownBarWidth = 20

// RenderBreakdown renders one bar per category with spending.
func RenderBreakdown(theme themes.Theme, rows []viewmodel.BreakdownRow, currency string) string {
	title := theme.Subtitle.Render("Spending by category")
	if len(rows) == 0 {
		return title + "\n" + theme.Faint.Render("No categorized spending this month")
	}

	nameWidth := 0
	for _, r := range rows {
		nameWidth = max(nameWidth, len(r.Name))
	}

	lines := []string{title}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%-*s %s %5.1f%%  %s",
			nameWidth, r.Name,
			renderBar(theme, r.Percent, breakdownBarWidth),
			r.Percent,
			money.FormatCents(r.TotalCents, currency),
		))
	}
	return strings.Join(lines, "\n")
}

func renderBar(theme themes.Theme, percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))
	return theme.BarFull.Render(strings.Repeat("█", filled)) +
		theme.BarEmpty.Render(strings.Repeat("░", width-filled))
}
