// Package components renders the pieces of the pennywise screens.
package components

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/charmbracelet/lipgloss"
)

// RenderSummary renders the month summary card: the listed total and
// count, then the categorized expense, income and net.
func RenderSummary(theme themes.Theme, view viewmodel.HomeView, currency string, width int) string {
	if view.Loading {
		return theme.RoundedBox.Width(cardWidth(width)).Render(theme.Faint.Render("Loading..."))
	}

	lines := []string{
		theme.Bold.Render(fmt.Sprintf("Total: %s", money.FormatCents(view.TotalCents, currency))),
		theme.Normal.Render(fmt.Sprintf("Transactions: %d", view.Count())),
		fmt.Sprintf("%s  %s  %s",
			theme.Expense.Render("Spent "+money.FormatCents(view.Totals.ExpenseCents, currency)),
			theme.Income.Render("Earned "+money.FormatCents(view.Totals.IncomeCents, currency)),
			theme.Bold.Render("Net "+money.FormatCents(view.Totals.NetCents, currency)),
		),
	}
	if view.Totals.UncategorizedCents != 0 {
		lines = append(lines, theme.Faint.Render(
			fmt.Sprintf("Uncategorized: %s", money.FormatCents(view.Totals.UncategorizedCents, currency))))
	}

	return theme.RoundedBox.Width(cardWidth(width)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func cardWidth(width int) int {
	if width <= 4 {
		return 40
	}
	return min(width-4, 60)
}
