package tui

import (
	"fmt"

	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/tui/components"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateAdd:
		return m.renderAdd()
	case StateHelp:
		return m.renderHelp()
	default:
		return m.renderHome()
	}
}

func (m Model) renderHeader() string {
	brand := m.theme.Title.Foreground(m.theme.Primary).Render("pennywise")
	return lipgloss.JoinHorizontal(lipgloss.Center,
		brand,
		"   ",
		components.RenderMonthSwitcher(m.theme, m.view.MonthLabel),
	)
}

func (m Model) renderHome() string {
	sections := []string{
		m.renderHeader(),
		components.RenderSummary(m.theme, m.view, m.config.Defaults.Currency, m.width),
	}
	if !m.view.Loading {
		sections = append(sections,
			components.RenderBreakdown(m.theme, m.view.Breakdown(), m.config.Defaults.Currency),
			"",
			m.list.View(),
		)
	}

	if m.state == StateConfirmDelete && m.pendingDelete != nil {
		sections = append(sections, m.renderConfirmDelete())
	}
	if m.notice.Visible() {
		sections = append(sections, m.notice.Render(m.theme))
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderConfirmDelete() string {
	t := m.pendingDelete
	prompt := fmt.Sprintf("Delete %s %s on %s? (y/n)",
		viewmodel.TruncateString(viewmodel.PayeeLabel(*t), 30),
		money.FormatCents(t.AmountCents, t.Currency),
		t.Date,
	)
	return m.theme.StatusError.Render(prompt)
}

func (m Model) renderAdd() string {
	sections := []string{m.form.View()}
	if m.notice.Visible() {
		sections = append(sections, "", m.notice.Render(m.theme))
	}
	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHelp() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Keyboard shortcuts"),
		"",
		m.help.View(m.keymap),
		"",
		m.theme.Faint.Render("Press ? or Esc to return"),
	)
}
