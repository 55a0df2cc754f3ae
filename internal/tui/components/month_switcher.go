package components

import (
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// RenderMonthSwitcher renders the month title between previous and next hints.
func RenderMonthSwitcher(theme themes.Theme, label string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		theme.Faint.Render("‹ prev  "),
		theme.Title.Render(label),
		theme.Faint.Render("  next ›"),
	)
}
