package components

import (
	"fmt"
	"strings"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AddFormSubmittedMsg carries the form's values when the user submits.
type AddFormSubmittedMsg struct {
	Form viewmodel.AddForm
}

// AddFormCancelledMsg is sent when the user leaves the form.
type AddFormCancelledMsg struct{}

// Form field positions, in focus order.
const (
	fieldAmount = iota
	fieldPayee
	fieldDate
	fieldNote
	fieldCategory
	fieldCount
)

var fieldNames = [fieldCount]string{
	viewmodel.FieldAmount,
	viewmodel.FieldPayee,
	viewmodel.FieldDate,
	viewmodel.FieldNote,
	viewmodel.FieldCategory,
}

var fieldLabels = [fieldCount]string{"Amount", "Payee", "Date", "Note", "Category"}

// FormKeyMap defines the keys the add form reacts to.
type FormKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// DefaultFormKeyMap returns the default form bindings.
func DefaultFormKeyMap() FormKeyMap {
	return FormKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("Shift+Tab/↑", "previous field"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous category"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next category"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
	}
}

// AddFormModel is the add-transaction form.
type AddFormModel struct {
	theme      themes.Theme
	keys       FormKeyMap
	errors     viewmodel.FieldErrors
	inputs     []textinput.Model
	categories []model.Category
	// category is an index into categories, or -1 for none.
	category int
	focus    int
}

// NewAddForm creates a form with the amount field focused. today is shown
// as the date placeholder.
func NewAddForm(theme themes.Theme, categories []model.Category, today string) AddFormModel {
	inputs := make([]textinput.Model, fieldCategory)
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		in.Width = 30
		inputs[i] = in
	}
	inputs[fieldAmount].Placeholder = "12.34"
	inputs[fieldAmount].CharLimit = 20
	inputs[fieldPayee].Placeholder = "optional"
	inputs[fieldDate].Placeholder = today
	inputs[fieldDate].CharLimit = 10
	inputs[fieldNote].Placeholder = "optional"
	inputs[fieldAmount].Focus()

	return AddFormModel{
		theme:      theme,
		keys:       DefaultFormKeyMap(),
		inputs:     inputs,
		categories: categories,
		category:   -1,
		focus:      fieldAmount,
	}
}

// Values returns the raw form contents.
func (m AddFormModel) Values() viewmodel.AddForm {
	form := viewmodel.AddForm{
		Amount: m.inputs[fieldAmount].Value(),
		Payee:  m.inputs[fieldPayee].Value(),
		Date:   m.inputs[fieldDate].Value(),
		Note:   m.inputs[fieldNote].Value(),
	}
	if m.category >= 0 {
		form.CategoryID = m.categories[m.category].ID
	}
	return form
}

// SetErrors shows validation messages next to their fields.
func (m *AddFormModel) SetErrors(errs viewmodel.FieldErrors) {
	m.errors = errs
}

// Errors returns the messages currently shown.
func (m AddFormModel) Errors() viewmodel.FieldErrors {
	return m.errors
}

// Focused returns the name of the focused field.
func (m AddFormModel) Focused() string {
	return fieldNames[m.focus]
}

// SetValue fills a text field by name. Unknown names are ignored.
func (m *AddFormModel) SetValue(field, value string) {
	for i := 0; i < fieldCategory; i++ {
		if fieldNames[i] == field {
			m.inputs[i].SetValue(value)
			return
		}
	}
}

func (m *AddFormModel) setFocus(i int) tea.Cmd {
	if m.focus < fieldCategory {
		m.inputs[m.focus].Blur()
	}
	m.focus = (i + fieldCount) % fieldCount
	if m.focus < fieldCategory {
		return m.inputs[m.focus].Focus()
	}
	return nil
}

func (m *AddFormModel) cycleCategory(delta int) {
	// Positions run -1 (none) through len-1.
	n := len(m.categories) + 1
	m.category = (m.category+1+delta+n)%n - 1
}

// Update handles navigation, submission and typing.
func (m AddFormModel) Update(msg tea.Msg) (AddFormModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Cancel):
			return m, func() tea.Msg { return AddFormCancelledMsg{} }
		case key.Matches(keyMsg, m.keys.Submit):
			form := m.Values()
			return m, func() tea.Msg { return AddFormSubmittedMsg{Form: form} }
		case key.Matches(keyMsg, m.keys.Next):
			return m, m.setFocus(m.focus + 1)
		case key.Matches(keyMsg, m.keys.Prev):
			return m, m.setFocus(m.focus - 1)
		case m.focus == fieldCategory && key.Matches(keyMsg, m.keys.Left):
			m.cycleCategory(-1)
			return m, nil
		case m.focus == fieldCategory && key.Matches(keyMsg, m.keys.Right):
			m.cycleCategory(1)
			return m, nil
		}
	}

	if m.focus == fieldCategory {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m AddFormModel) categoryLabel() string {
	if m.category < 0 {
		return "Uncategorized"
	}
	c := m.categories[m.category]
	return fmt.Sprintf("%s (%s)", c.Name, c.Type)
}

// View renders the form.
func (m AddFormModel) View() string {
	lines := []string{m.theme.Title.Render("Add Transaction"), ""}

	for i := 0; i < fieldCount; i++ {
		label := m.theme.FieldLabel.Render(fieldLabels[i])
		if i == m.focus {
			label = m.theme.FieldFocused.Render(fieldLabels[i])
		}

		var value string
		if i == fieldCategory {
			value = "‹ " + m.categoryLabel() + " ›"
			if i != m.focus {
				value = m.theme.Faint.Render(value)
			}
		} else {
			value = m.inputs[i].View()
		}

		line := lipgloss.JoinHorizontal(lipgloss.Top, label, value)
		if msg, ok := m.errors[fieldNames[i]]; ok {
			line += "  " + m.theme.FieldError.Render(msg)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", m.theme.Faint.Render(strings.Join([]string{
		m.keys.Next.Help().Key + " " + m.keys.Next.Help().Desc,
		m.keys.Submit.Help().Key + " " + m.keys.Submit.Help().Desc,
		m.keys.Cancel.Help().Key + " " + m.keys.Cancel.Help().Desc,
	}, " • ")))

	return strings.Join(lines, "\n")
}
