package components

import (
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/money"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TransactionListModel shows a month's transactions, newest first.
type TransactionListModel struct {
	theme        themes.Theme
	transactions []model.Transaction
	table        table.Model
	width        int
}

// NewTransactionList creates an empty, focused transaction list.
func NewTransactionList(theme themes.Theme) TransactionListModel {
	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return TransactionListModel{theme: theme, table: t, width: 80}
}

func columnsFor(width int) []table.Column {
	const fixed = 8 + 14 + 12
	flexible := max(width-fixed-8, 20)
	payee := flexible * 3 / 5
	return []table.Column{
		{Title: "Date", Width: 8},
		{Title: "Payee", Width: payee},
		{Title: "Category", Width: flexible - payee},
		{Title: "Amount", Width: 14},
	}
}

// SetTransactions replaces the rows, keeping the cursor in range.
func (m *TransactionListModel) SetTransactions(txns []model.Transaction) {
	m.transactions = txns

	rows := make([]table.Row, len(txns))
	for i, t := range txns {
		rows[i] = table.Row{
			viewmodel.FormatDateShort(t.Date),
			viewmodel.PayeeLabel(t),
			viewmodel.CategoryLabel(t),
			money.FormatCents(t.AmountCents, t.Currency),
		}
	}
	m.table.SetRows(rows)

	if cursor := m.table.Cursor(); cursor >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// SetSize fits the list into width by height cells.
func (m *TransactionListModel) SetSize(width, height int) {
	m.width = width
	m.table.SetColumns(columnsFor(width))
	m.table.SetHeight(max(height, 3))
}

// Selected returns the highlighted transaction, if any.
func (m TransactionListModel) Selected() (model.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.transactions) {
		return model.Transaction{}, false
	}
	return m.transactions[i], true
}

// Len returns the number of rows.
func (m TransactionListModel) Len() int {
	return len(m.transactions)
}

// Update handles cursor movement.
func (m TransactionListModel) Update(msg tea.Msg) (TransactionListModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the list.
func (m TransactionListModel) View() string {
	if len(m.transactions) == 0 {
		return m.theme.Faint.Render("No transactions this month. Press a to add one.")
	}
	return m.table.View()
}
